package kinds

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitrine-app/vitrine/internal/model"
)

func TestForKnownKinds(t *testing.T) {
	for _, k := range []model.Kind{model.KindWatches, model.KindSneakers, model.KindPurses} {
		c := For(k)
		assert.Equal(t, k, c.Kind)
		assert.NotEmpty(t, c.Plural)
		assert.NotEmpty(t, c.Icon)
	}
}

func TestForUnknownFallsBackToWatches(t *testing.T) {
	assert.Equal(t, model.KindWatches, For("").Kind)
	assert.Equal(t, model.KindWatches, For("hats").Kind)
}

func TestAllCoversEveryKind(t *testing.T) {
	all := All()
	assert.Len(t, all, 3)
	for _, c := range all {
		assert.True(t, c.Kind.Valid())
	}
}
