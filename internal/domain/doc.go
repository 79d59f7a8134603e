// Package domain models vulture-carcass observation records and the
// filtering pipeline that turns them into country-clipped point layers.
//
// # Data Source
//
// Observations come from an iNaturalist-style community API
// (GET /v1/observations), restricted to research-grade records with a
// geolocation inside the configured place. Each record carries two free-text
// fields — the tag list and the description — plus attribution, a place
// guess, a record URL, and an optional photo URL.
//
// # Keyword Heuristic
//
// Carcass records are identified by case-insensitive substring matching over
// the two free-text fields: at least one inclusion keyword must appear and no
// exclusion keyword may appear. Exclusion keywords mark records that are not
// fresh mortality evidence (old skeletons, bone finds). An exclusion hit
// drops the record entirely; there is no down-weighting. A record missing a
// text field simply matches no keywords. Records observed before the
// configured cutoff date are dropped last, so the per-stage counts show how
// far each record got.
//
// # Geometry
//
// Every layer is WGS-84 (EPSG:4326). Rows whose longitude/latitude cells are
// missing, non-numeric, or outside ±180/±90 are dropped and counted, never
// defaulted. The country clip is closed containment: points exactly on the
// boundary are retained. Evaluating any spatial predicate across two layers
// with different declared CRS identifiers is a configuration defect and
// aborts the run.
//
// # Input Shapes
//
// Three tables flow through the same geometry builder: API observations
// (canonical column names, see [ObservationColumns]) and the two
// hand-curated reference CSVs (breeding colonies, disease-outbreak sites),
// whose longitude/latitude column names come from configuration via
// [ColumnMap].
package domain
