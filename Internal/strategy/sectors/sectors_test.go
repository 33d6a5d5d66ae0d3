package sectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := DefaultClassifier()

	assert.Equal(t, Sector{Name: "Finance", Trending: true}, c.Classify("HDFCBANK"))
	assert.Equal(t, "Finance🔥", c.Classify(" hdfcbank ").Label())
	assert.Equal(t, "Pharma", c.Classify("CIPLA").Label())
	assert.False(t, c.Classify("CIPLA").Trending)
	assert.Equal(t, Others, c.Classify("UNKNOWNCO"))
	assert.False(t, c.Classify("UNKNOWNCO").Trending)

	var nilClassifier *Classifier
	assert.Equal(t, Others, nilClassifier.Classify("TCS"))
}

func TestParseLabel(t *testing.T) {
	assert.Equal(t, Sector{Name: "Power", Trending: true}, ParseLabel("Power🔥"))
	assert.Equal(t, Sector{Name: "FMCG"}, ParseLabel("FMCG"))
	assert.Equal(t, Others, ParseLabel("  "))
}

func TestWithOverrides(t *testing.T) {
	base := DefaultClassifier()
	c := base.WithOverrides(map[string]string{"cipla": "Pharma🔥", "IRFC": "Finance"})

	assert.True(t, c.Classify("CIPLA").Trending)
	assert.Equal(t, Sector{Name: "Finance"}, c.Classify("IRFC"))
	assert.False(t, base.Classify("CIPLA").Trending)
}
