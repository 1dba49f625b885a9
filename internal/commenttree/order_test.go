package commenttree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodes(records ...Record) []*Node {
	out := make([]*Node, 0, len(records))
	for _, r := range records {
		out = append(out, &Node{Record: r, Children: []*Node{}})
	}
	return out
}

func TestOrderRoots_NewestFirstTieByID(t *testing.T) {
	in := nodes(
		rec("b", nil, 5),
		rec("a", nil, 5),
		rec("c", nil, 9),
		rec("d", nil, 1),
	)
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(OrderRoots(in)))
}

func TestOrderRoots_Deterministic(t *testing.T) {
	in := nodes(
		rec("x", nil, 3),
		rec("y", nil, 3),
		rec("z", nil, 1),
		rec("w", nil, 7),
	)
	reversed := []*Node{in[3], in[2], in[1], in[0]}

	first := ids(OrderRoots(in))
	assert.Equal(t, first, ids(OrderRoots(in)))
	assert.Equal(t, first, ids(OrderRoots(reversed)))
	assert.Equal(t, first, ids(OrderRoots(OrderRoots(in))))
}

func TestOrderRoots_LeavesInputUntouched(t *testing.T) {
	in := nodes(rec("a", nil, 1), rec("b", nil, 2))
	_ = OrderRoots(in)
	assert.Equal(t, []string{"a", "b"}, ids(in))
}

func TestOrderRoots_Empty(t *testing.T) {
	out := OrderRoots(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestByAge(t *testing.T) {
	in := nodes(rec("b", nil, 2), rec("c", nil, 1), rec("a", nil, 2))
	assert.Equal(t, []string{"c", "a", "b"}, ids(ByAge(in)))
}

func TestByVotes(t *testing.T) {
	low := rec("low", nil, 9)
	low.Votes = -2
	high := rec("high", nil, 1)
	high.Votes = 4
	tieOld := rec("tie-old", nil, 2)
	tieOld.Votes = 1
	tieNew := rec("tie-new", nil, 3)
	tieNew.Votes = 1

	out := ByVotes(nodes(low, tieOld, high, tieNew))
	assert.Equal(t, []string{"high", "tie-new", "tie-old", "low"}, ids(out))
}

func TestPolicyByName(t *testing.T) {
	testCases := []struct {
		name string
		ok   bool
		want []string
	}{
		{"", true, []string{"b", "c", "a"}},
		{"newest", true, []string{"b", "c", "a"}},
		{"oldest", true, []string{"a", "c", "b"}},
		{"none", true, []string{"a", "b", "c"}},
		{"top", true, []string{"c", "b", "a"}},
		{"random", false, nil},
	}

	a := rec("a", nil, 1)
	b := rec("b", nil, 3)
	c := rec("c", nil, 2)
	c.Votes = 10

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			policy, ok := PolicyByName(tc.name)
			assert.Equal(t, tc.ok, ok)
			if !ok {
				assert.Nil(t, policy)
				return
			}
			assert.Equal(t, tc.want, ids(policy(nodes(a, b, c))))
		})
	}
}
