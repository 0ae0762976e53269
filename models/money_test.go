package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMoney_Arithmetic(t *testing.T) {
	price := MustMoney("10.10")
	total := price.Times(3).Add(MustMoney("0.70")).Sub(MustMoney("1"))

	assert.True(t, total.Equal(MustMoney("30")), "got %s", total)
	assert.True(t, price.Neg().Add(price).IsZero())
}

func TestMoney_BSONStoresDecimal128(t *testing.T) {
	doc := struct {
		Price Money `bson:"price"`
	}{Price: MustMoney("19.99")}

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, bson.TypeDecimal128, bson.Raw(raw).Lookup("price").Type)

	var out struct {
		Price Money `bson:"price"`
	}
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.True(t, out.Price.Equal(doc.Price), "got %s", out.Price)
}

func TestMoney_BSONAcceptsLegacyDoubles(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"price": 12.5})
	require.NoError(t, err)

	var out struct {
		Price Money `bson:"price"`
	}
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.True(t, out.Price.Equal(MustMoney("12.5")))
}

func TestMoney_JSONIsANumber(t *testing.T) {
	b, err := json.Marshal(map[string]Money{"totalPrice": MustMoney("80")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalPrice": 80}`, string(b))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"4.25"`), &m))
	assert.True(t, m.Equal(MustMoney("4.25")))
}
