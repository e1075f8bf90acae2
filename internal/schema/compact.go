package schema

// Compacted is a union normalized for codec construction.
type Compacted struct {
	// Branches are the distinct branches other than Null and Any, in
	// declaration order. None of them is an Or.
	Branches []Schema

	// MatchesNull is set when Null (or Any) was among the branches.
	MatchesNull bool

	// MatchesAny is set when Any was among the branches.
	MatchesAny bool

	// HasSingleOtherBranch is set when exactly one branch remains.
	HasSingleOtherBranch bool
}

// Compact flattens s into its distinct non-union branches and pulls out
// Null and Any, which codecs handle outside the per-shape table.
func Compact(s Schema) Compacted {
	var c Compacted
	var docs []string
	c.add(s, &docs)
	c.HasSingleOtherBranch = len(c.Branches) == 1
	return c
}

func (c *Compacted) add(s Schema, docs *[]string) {
	switch s := s.(type) {
	case *Or:
		for _, b := range s.Branches {
			c.add(b, docs)
		}
	case *Any:
		c.MatchesAny = true
		c.MatchesNull = true
	case *Null:
		c.MatchesNull = true
	default:
		doc, err := MarshalDoc(s)
		if err == nil {
			for _, d := range *docs {
				if d == string(doc) {
					return
				}
			}
			*docs = append(*docs, string(doc))
		}
		c.Branches = append(c.Branches, s)
	}
}

// Schema rebuilds the normalized schema: the union of the remaining
// branches plus Any or Null when they were present.
func (c Compacted) Schema() Schema {
	branches := make([]Schema, 0, len(c.Branches)+1)
	branches = append(branches, c.Branches...)
	switch {
	case c.MatchesAny:
		branches = append(branches, AnySchema)
	case c.MatchesNull:
		branches = append(branches, NullSchema)
	}
	switch len(branches) {
	case 0:
		return AnySchema
	case 1:
		return branches[0]
	}
	return &Or{Branches: branches}
}
