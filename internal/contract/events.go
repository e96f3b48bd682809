package contract

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blocktix/btx/internal/chain"
)

// ExtractEventArg scans emitted logs for the named event from the
// given contract address and returns one of its arguments as a
// decoded scalar string. Returns ok=false when no matching log is
// found — the caller decides whether that is fatal.
func ExtractEventArg(abi []ABIEntry, logs []chain.LogEntry, contractAddr, eventName, argName string) (string, bool, error) {
	ev := findEvent(abi, eventName)
	if ev == nil {
		return "", false, fmt.Errorf("event %q not found in ABI", eventName)
	}
	topic := ev.Topic()

	for _, log := range logs {
		if !strings.EqualFold(log.Address, contractAddr) {
			continue
		}
		if len(log.Topics) == 0 || !strings.EqualFold(log.Topics[0], topic) {
			continue
		}
		val, err := decodeEventArg(ev, log, argName)
		if err != nil {
			return "", false, err
		}
		return val, true, nil
	}
	return "", false, nil
}

// decodeEventArg pulls one argument out of a matched log. Indexed
// arguments live in topics (in declaration order); the rest are
// tuple-encoded in the data payload.
func decodeEventArg(ev *ABIEntry, log chain.LogEntry, argName string) (string, error) {
	topicIdx := 0
	var dataParams []ABIParam
	dataPos := -1

	for _, in := range ev.Inputs {
		if in.Indexed {
			topicIdx++
			if in.Name == argName {
				if topicIdx >= len(log.Topics) {
					return "", fmt.Errorf("log missing topic for %s", argName)
				}
				word, err := hex.DecodeString(strings.TrimPrefix(log.Topics[topicIdx], "0x"))
				if err != nil || len(word) != 32 {
					return "", fmt.Errorf("bad topic for %s", argName)
				}
				return decodeStatic(parseType(in), word), nil
			}
			continue
		}
		if in.Name == argName {
			dataPos = len(dataParams)
		}
		dataParams = append(dataParams, in)
	}

	if dataPos < 0 {
		return "", fmt.Errorf("event %s has no argument %q", ev.Name, argName)
	}

	data, err := hex.DecodeString(strings.TrimPrefix(log.Data, "0x"))
	if err != nil {
		return "", fmt.Errorf("decoding log data: %w", err)
	}
	types := make([]abiType, len(dataParams))
	for i, p := range dataParams {
		types[i] = parseType(p)
	}
	vals, err := decodeTuple(types, data)
	if err != nil {
		return "", fmt.Errorf("decoding log data: %w", err)
	}
	s, ok := vals[dataPos].(string)
	if !ok {
		return "", fmt.Errorf("argument %q is not a scalar", argName)
	}
	return s, nil
}
