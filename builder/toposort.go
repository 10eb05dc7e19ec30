package builder

import "github.com/monocle-ai/dapmeta/schema"

// dependencyOrder returns every node of the dataset exactly once, with each
// type ordered no later than any type that embeds or references it (enum
// underlying type, structure field type, sequence row type). Ties between
// unrelated nodes preserve dataset insertion order, so the output is
// deterministic. The type-usage graph must be acyclic; a cycle is an
// unchecked precondition violation of the schema producer.
func dependencyOrder(ds *schema.Dataset) []*schema.Node {
	out := make([]*schema.Node, 0, len(ds.Nodes))
	visited := make(map[*schema.Node]bool, len(ds.Nodes))

	var visit func(n *schema.Node)
	visit = func(n *schema.Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, dep := range typeDeps(n) {
			visit(dep)
		}
		out = append(out, n)
	}

	for _, n := range ds.Nodes {
		visit(n)
	}
	return out
}

// typeDeps lists the base types a type node must be defined after.
func typeDeps(n *schema.Node) []*schema.Node {
	if n.Sort != schema.SortType {
		return nil
	}
	switch n.Kind {
	case schema.KindEnum:
		return []*schema.Node{n.Base}
	case schema.KindStruct, schema.KindSequence:
		deps := make([]*schema.Node, 0, len(n.Fields))
		for _, f := range n.Fields {
			deps = append(deps, f.Base)
		}
		return deps
	default:
		return nil
	}
}
