package chain

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"notifyScope/internal/model"
)

// Anchor programs emit events as self-CPI log lines carrying a base64 borsh
// payload prefixed with an 8-byte discriminator derived from the event name.
const eventLogPrefix = "Program data: "

// EventDiscriminator returns the anchor discriminator for an event name.
func EventDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("event:" + name))
	var disc [8]byte
	copy(disc[:], sum[:8])
	return disc
}

// DecodedEvent is one anchor event recovered from a transaction's logs.
// Index is the event's position among all event payload lines of the
// transaction, so (signature, index) identifies the event uniquely.
type DecodedEvent struct {
	Name   string
	Fields map[string]any
	Index  int
}

// DecodeEventLogs scans transaction log lines for anchor event payloads and
// decodes those matching one of the given specs. Payloads that match no spec
// or fail to decode are skipped; they still advance the event index.
func DecodeEventLogs(logs []string, specs []model.EventSpec) []DecodedEvent {
	index := make(map[[8]byte]model.EventSpec, len(specs))
	for _, spec := range specs {
		index[EventDiscriminator(spec.Name)] = spec
	}

	var out []DecodedEvent
	position := 0
	for _, line := range logs {
		payload, ok := strings.CutPrefix(line, eventLogPrefix)
		if !ok {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil || len(data) < 8 {
			position++
			continue
		}

		var disc [8]byte
		copy(disc[:], data[:8])
		spec, ok := index[disc]
		if !ok {
			position++
			continue
		}

		fields, err := DecodeEventData(data[8:], spec)
		if err != nil {
			position++
			continue
		}

		out = append(out, DecodedEvent{Name: spec.Name, Fields: fields, Index: position})
		position++
	}
	return out
}

// DecodeEventData decodes a borsh event payload (without discriminator) into
// a field map according to the spec's declared field layout.
func DecodeEventData(data []byte, spec model.EventSpec) (map[string]any, error) {
	dec := bin.NewBorshDecoder(data)
	fields := make(map[string]any, len(spec.Fields))

	for _, f := range spec.Fields {
		switch f.Type {
		case model.FieldPublicKey:
			raw, err := dec.ReadNBytes(32)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			fields[f.Name] = solana.PublicKeyFromBytes(raw).String()
		case model.FieldU64:
			v, err := dec.ReadUint64(bin.LE)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			fields[f.Name] = v
		case model.FieldI64:
			v, err := dec.ReadInt64(bin.LE)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			fields[f.Name] = v
		case model.FieldU32:
			v, err := dec.ReadUint32(bin.LE)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			fields[f.Name] = v
		case model.FieldBool:
			v, err := dec.ReadBool()
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			fields[f.Name] = v
		case model.FieldString:
			v, err := dec.ReadString()
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			fields[f.Name] = v
		default:
			return nil, fmt.Errorf("field %s: unsupported type %q", f.Name, f.Type)
		}
	}

	return fields, nil
}
