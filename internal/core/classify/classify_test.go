package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/orbitwatch/orbitgraph/internal/config"
)

func TestFirstMatchWins(t *testing.T) {
	c := New(nil)

	// "spacecraft communications technology" matches Communications before
	// Scientific Research ("space") and Technology-Testing ("technolog").
	assert.Equal(t, "Communications", c.Classify("Spacecraft communications technology"))
}

func TestKnownCategories(t *testing.T) {
	c := New(nil)

	cases := map[string]string{
		"Telecommunications relay":                     "Communications",
		"Earth resources survey":                       "Earth Observation",
		"Investigation of the upper atmosphere":        "Scientific Research",
		"GLONASS navigation payload":                   "Navigation",
		"Military reconnaissance":                      "Military-Defense",
		"Cargo delivery to the orbital station":        "Space Station",
		"In-orbit demonstration of new thruster":       "Technology-Testing",
		"Amateur radio transponder for student clubs":  "Other",
	}
	for function, want := range cases {
		assert.Equal(t, want, c.Classify(function), "function %q", function)
	}
}

func TestEmptyFunctionUnclassified(t *testing.T) {
	c := New(nil)
	assert.Equal(t, "", c.Classify(""))
}

func TestRulesFromConfig(t *testing.T) {
	c := FromConfig(config.ClassifyConfig{
		Rules: []config.ClassifyRule{
			{Category: "Weather", Keywords: []string{"meteorolog", "weather"}},
			{Category: "", Keywords: []string{"ignored"}},
		},
	})

	assert.Equal(t, "Weather", c.Classify("Meteorological imaging"))
	assert.Equal(t, FallbackCategory, c.Classify("ignored by the empty rule"))
	assert.Equal(t, []string{"Weather", FallbackCategory}, c.Categories())
}
