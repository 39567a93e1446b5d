package vm

import "cellkit.dev/harness/chain"

type scriptGroup struct {
	typ     GroupType
	index   int
	hash    chain.Hash
	script  chain.Script
	inputs  []int
	outputs []int
}

// buildGroups collects lock groups over inputs, then type groups over
// inputs and outputs, each in first-seen order.
func buildGroups(rtx *ResolvedTx) ([]*scriptGroup, error) {
	var groups []*scriptGroup
	locks := map[chain.Hash]*scriptGroup{}
	for i, in := range rtx.Inputs {
		h, err := in.Output.Lock.Hash()
		if err != nil {
			return nil, err
		}
		g, ok := locks[h]
		if !ok {
			g = &scriptGroup{typ: LockGroup, index: len(locks), hash: h, script: in.Output.Lock}
			locks[h] = g
			groups = append(groups, g)
		}
		g.inputs = append(g.inputs, i)
	}

	types := map[chain.Hash]*scriptGroup{}
	typeGroup := func(s *chain.Script) (*scriptGroup, error) {
		h, err := s.Hash()
		if err != nil {
			return nil, err
		}
		g, ok := types[h]
		if !ok {
			g = &scriptGroup{typ: TypeGroup, index: len(types), hash: h, script: *s}
			types[h] = g
			groups = append(groups, g)
		}
		return g, nil
	}
	for i, in := range rtx.Inputs {
		if in.Output.Type == nil {
			continue
		}
		g, err := typeGroup(in.Output.Type)
		if err != nil {
			return nil, err
		}
		g.inputs = append(g.inputs, i)
	}
	for i, out := range rtx.Tx.Outputs {
		if out.Output.Type == nil {
			continue
		}
		g, err := typeGroup(out.Output.Type)
		if err != nil {
			return nil, err
		}
		g.outputs = append(g.outputs, i)
	}
	return groups, nil
}
