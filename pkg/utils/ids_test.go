package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMD5Hash(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", MD5Hash(""))
	assert.Equal(t, MD5Hash("same input"), MD5Hash("same input"))
	assert.NotEqual(t, MD5Hash("a"), MD5Hash("b"))
}

func TestGenerateRandomID(t *testing.T) {
	id := GenerateRandomID(8)
	assert.Len(t, id, 8)
	assert.NotEqual(t, id, GenerateRandomID(8))
}
