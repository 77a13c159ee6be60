package entities

// Course is one entry of the locally curated course catalog. The catalog
// only exists so alert rules can reference a stable course id; live slot
// data always comes from the upstream provider.
type Course struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
