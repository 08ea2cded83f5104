package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	candidates := []string{"testmodel.Order", "testmodel.OrderItem", "testmodel.Customer", "testmodel.Product"}

	assert.Equal(t, []string{"testmodel.Order", "testmodel.OrderItem"}, Suggest("testmodel.Ordre", candidates, 2))
	assert.Equal(t, []string{"testmodel.Customer"}, Suggest("TESTMODEL.CUSTOMER", candidates, 1))
	assert.Empty(t, Suggest("zzz", candidates, 3))
	assert.Len(t, Suggest("testmodel.", candidates, 0), 4)
}
