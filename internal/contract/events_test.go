package contract

import (
	"testing"

	"github.com/blocktix/btx/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventContractAddr = "0x1111111111111111111111111111111111111111"

func eventCreatedLog(eventID int64) chain.LogEntry {
	ev := findEvent(eventTicketABI, "EventCreated")
	return chain.LogEntry{
		Address: eventContractAddr,
		Topics:  []string{ev.Topic(), "0x" + word(eventID), "0x" + addrWord(testAddr)},
		// Non-indexed name: offset, length, "Fest" padded.
		Data:   "0x" + word(32) + word(4) + padRight("46657374"),
		TxHash: "0xaaaa",
	}
}

func TestExtractIndexedArg(t *testing.T) {
	logs := []chain.LogEntry{eventCreatedLog(7)}
	id, ok, err := ExtractEventArg(eventTicketABI, logs, eventContractAddr, "EventCreated", "eventId")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "7", id)
}

func TestExtractIndexedAddressArg(t *testing.T) {
	logs := []chain.LogEntry{eventCreatedLog(7)}
	creator, ok, err := ExtractEventArg(eventTicketABI, logs, eventContractAddr, "EventCreated", "creator")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testAddr, creator)
}

func TestExtractDataArg(t *testing.T) {
	logs := []chain.LogEntry{eventCreatedLog(7)}
	name, ok, err := ExtractEventArg(eventTicketABI, logs, eventContractAddr, "EventCreated", "name")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Fest", name)
}

func TestExtractSkipsForeignAddress(t *testing.T) {
	log := eventCreatedLog(7)
	log.Address = "0x9999999999999999999999999999999999999999"
	_, ok, err := ExtractEventArg(eventTicketABI, []chain.LogEntry{log}, eventContractAddr, "EventCreated", "eventId")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExtractNoMatchingTopic(t *testing.T) {
	logs := []chain.LogEntry{eventCreatedLog(7)}
	_, ok, err := ExtractEventArg(eventTicketABI, logs, eventContractAddr, "TicketPurchased", "tokenId")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExtractUnknownEvent(t *testing.T) {
	_, _, err := ExtractEventArg(eventTicketABI, nil, eventContractAddr, "NoSuchEvent", "id")
	assert.ErrorContains(t, err, "not found in ABI")
}

func TestExtractUnknownArg(t *testing.T) {
	logs := []chain.LogEntry{eventCreatedLog(7)}
	_, _, err := ExtractEventArg(eventTicketABI, logs, eventContractAddr, "EventCreated", "nonexistent")
	assert.ErrorContains(t, err, `no argument "nonexistent"`)
}

func TestExtractCaseInsensitiveAddressMatch(t *testing.T) {
	logs := []chain.LogEntry{eventCreatedLog(3)}
	id, ok, err := ExtractEventArg(eventTicketABI, logs,
		"0x1111111111111111111111111111111111111111", "EventCreated", "eventId")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3", id)
}
