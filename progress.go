package codebook

// SectionProgress receives how many document sections a renderer has
// finished out of total. It is called on the goroutine running Render.
type SectionProgress func(done, total int)

// Report calls fn when it is set.
func (fn SectionProgress) Report(done, total int) {
	if fn != nil {
		fn(done, total)
	}
}
