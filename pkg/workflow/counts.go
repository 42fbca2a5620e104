package workflow

// Counts holds the number of jobs sitting in each stage.
type Counts struct {
	Cutting   int `json:"cutting"`
	Stitching int `json:"stitching"`
	Finishing int `json:"finishing"`
	Packaging int `json:"packaging"`
}

// Add counts one job at stage s. Unknown stages are ignored.
func (c *Counts) Add(s Stage) {
	switch s {
	case Cutting:
		c.Cutting++
	case Stitching:
		c.Stitching++
	case Finishing:
		c.Finishing++
	case Packaging:
		c.Packaging++
	}
}

func (c Counts) Total() int {
	return c.Cutting + c.Stitching + c.Finishing + c.Packaging
}

// CountByStage tallies the given current stages.
func CountByStage(stages ...Stage) Counts {
	var c Counts
	for _, s := range stages {
		c.Add(s)
	}
	return c
}
