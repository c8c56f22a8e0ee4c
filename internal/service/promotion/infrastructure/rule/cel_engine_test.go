package rule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCELScopeEvaluator(t *testing.T) {
	evaluator, err := NewCELScopeEvaluator()
	require.NoError(t, err)

	cases := []struct {
		name       string
		applicable []string
		cart       []string
		want       bool
	}{
		{"single match", []string{"electronics"}, []string{"electronics"}, true},
		{"one of many matches", []string{"electronics", "books"}, []string{"toys", "books"}, true},
		{"no overlap", []string{"electronics"}, []string{"toys", "food"}, false},
		{"empty cart", []string{"electronics"}, nil, false},
		{"empty applicable", nil, []string{"electronics"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := evaluator.InScope(context.Background(), tc.applicable, tc.cart)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
