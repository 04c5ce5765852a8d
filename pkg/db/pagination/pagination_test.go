package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClampsBounds(t *testing.T) {
	assert.Equal(t, Request{Page: 1, Limit: 50}, Request{}.Normalize())
	assert.Equal(t, Request{Page: 1, Limit: 50}, Request{Page: -3, Limit: 0}.Normalize())
	assert.Equal(t, Request{Page: 2, Limit: 100}, Request{Page: 2, Limit: 500}.Normalize())
	assert.Equal(t, Request{Page: 4, Limit: 25}, Request{Page: 4, Limit: 25}.Normalize())
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Request{Page: 1, Limit: 50}.Offset())
	assert.Equal(t, 40, Request{Page: 3, Limit: 20}.Offset())
}

func TestBuildPageInfoCeil(t *testing.T) {
	info := BuildPageInfo(Request{Page: 1, Limit: 10}, 25)
	assert.Equal(t, 3, info.Pages)
	assert.Equal(t, int64(25), info.Total)

	info = BuildPageInfo(Request{Page: 1, Limit: 10}, 30)
	assert.Equal(t, 3, info.Pages)

	info = BuildPageInfo(Request{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, info.Pages)
}
