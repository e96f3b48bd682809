package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignature(t *testing.T) {
	fn := findFunction(fundraisingABI, "donate")
	require.NotNil(t, fn)
	assert.Equal(t, "donate(uint256,string,bool)", fn.Signature())
}

func TestSignatureTupleExpansion(t *testing.T) {
	e := ABIEntry{
		Name: "f", Type: "function",
		Inputs: []ABIParam{{
			Name: "offers", Type: "tuple[]",
			Components: []ABIParam{
				{Name: "buyer", Type: "address"},
				{Name: "price", Type: "uint256"},
			},
		}},
	}
	assert.Equal(t, "f((address,uint256)[])", e.Signature())
}

func TestSelectorKnownValue(t *testing.T) {
	// ERC-20 transfer, the canonical reference selector.
	e := ABIEntry{
		Name: "transfer", Type: "function",
		Inputs: []ABIParam{
			{Name: "to", Type: "address"},
			{Name: "amount", Type: "uint256"},
		},
	}
	assert.Equal(t, "0xa9059cbb", e.Selector())
}

func TestTopicKnownValue(t *testing.T) {
	e := ABIEntry{
		Name: "Transfer", Type: "event",
		Inputs: []ABIParam{
			{Name: "from", Type: "address", Indexed: true},
			{Name: "to", Type: "address", Indexed: true},
			{Name: "value", Type: "uint256"},
		},
	}
	assert.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		e.Topic())
}

func TestMutabilityPredicates(t *testing.T) {
	read := findFunction(eventTicketABI, "events")
	require.NotNil(t, read)
	assert.True(t, read.IsReadFunction())
	assert.False(t, read.IsWriteFunction())

	write := findFunction(eventTicketABI, "createEvent")
	require.NotNil(t, write)
	assert.True(t, write.IsWriteFunction())
	assert.False(t, write.IsPayable())

	payable := findFunction(eventTicketABI, "purchaseTicket")
	require.NotNil(t, payable)
	assert.True(t, payable.IsPayable())
}

func TestBuiltinRegistry(t *testing.T) {
	for _, name := range []Name{EventTicket, TicketMarketplace, Fundraising} {
		assert.NotNil(t, BuiltinABI(name), string(name))
	}
	assert.Nil(t, BuiltinABI(Name("NoSuchContract")))

	all := AllBuiltins()
	require.Len(t, all, 3)
	// Sorted by name.
	assert.Equal(t, EventTicket, all[0].Name)
	assert.Equal(t, Fundraising, all[1].Name)
	assert.Equal(t, TicketMarketplace, all[2].Name)
}

func TestFindEvent(t *testing.T) {
	assert.NotNil(t, findEvent(eventTicketABI, "TicketPurchased"))
	assert.Nil(t, findEvent(eventTicketABI, "createEvent")) // function, not event
}
