package model

import "gopkg.in/yaml.v3"

// UnmarshalYAML decodes a candidate on top of NewCandidate defaults, so
// keys missing from a hand-written file keep their default value.
func (c *CandidateSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain CandidateSpec
	p := plain(NewCandidate("", ""))
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = CandidateSpec(p)
	return nil
}

// UnmarshalYAML decodes a region on top of NewRegion defaults.
func (r *Region) UnmarshalYAML(node *yaml.Node) error {
	type plain Region
	p := plain(NewRegion(Coord{}, "", DefaultDimension))
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = Region(p)
	return nil
}
