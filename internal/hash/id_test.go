package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"method name", "TRACI 2.1", ID("TRACI 2.1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID(tt.data))
		})
	}
}

func TestID_Deterministic(t *testing.T) {
	assert.Equal(t, ID("ReCiPe 2016"), ID("ReCiPe 2016"))
	assert.NotEqual(t, ID("ReCiPe 2016"), ID("recipe 2016"))
}
