package cli

// Validate loads and assembles the manifest, reporting the first schema,
// wiring or typing problem found.
func Validate(path string) error {
	p, _, err := loadPipeline(path)
	if err != nil {
		return err
	}
	return p.Validate()
}
