package utils_test

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/soview/salesorders/internal/core/utils"
	"github.com/stretchr/testify/assert"
)

func TestNewOrderNumber(t *testing.T) {
	ts := time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)

	number := utils.NewOrderNumber(ts)

	assert.Regexp(t, regexp.MustCompile(`^SO-\d{8}-\d{4}$`), number)
	assert.True(t, strings.HasPrefix(number, "SO-20240307-"))
}

func TestNewOrderNumber_SuffixPadding(t *testing.T) {
	ts := time.Now()

	for i := 0; i < 100; i++ {
		number := utils.NewOrderNumber(ts)
		assert.Len(t, number, len("SO-20060102-0000"))
	}
}
