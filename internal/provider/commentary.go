package provider

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/five82/pitchside/internal/state"
)

// DecodeCommentary decodes a live-ticker payload record by record. Field
// anomalies are normalized (a negative elapsed becomes "no minute"); a
// structural failure stops decoding and is returned alongside every entry
// decoded before it.
//
// teams maps teamEvent "home"/"away" onto team names, home first.
func DecodeCommentary(raw []byte, teams []string) ([]state.CommentaryEntry, error) {
	trimmed := bytes.TrimSpace(raw)
	if isEmptyBody(trimmed) {
		return nil, nil
	}

	var entries []state.CommentaryEntry
	fail := func(cause error) ([]state.CommentaryEntry, error) {
		return entries, errors.Newf("invalid ltc json: %v; head=%q", cause, abbreviateBody(trimmed))
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return fail(err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fail(err)
		}
		key, _ := tok.(string)
		if key != "events" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return fail(err)
			}
			continue
		}

		tok, err = dec.Token()
		if err != nil {
			return fail(err)
		}
		if tok == nil {
			continue
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return fail(errors.Newf("events: expected array, got %v", tok))
		}
		for i := 0; dec.More(); i++ {
			var rec json.RawMessage
			if err := dec.Decode(&rec); err != nil {
				return fail(errors.Wrapf(err, "events[%d]", i))
			}
			entry, err := decodeTickerRecord(rec, teams)
			if err != nil {
				return fail(errors.Wrapf(err, "events[%d]", i))
			}
			entries = append(entries, entry)
		}
		if err := expectDelim(dec, ']'); err != nil {
			return fail(err)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return fail(err)
	}
	return entries, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return errors.Newf("expected %q, got %v", want, tok)
	}
	return nil
}

// decodeTickerRecord requires an object. Fields are read independently so a
// bad value in one field leaves the rest of the record intact.
func decodeTickerRecord(rec json.RawMessage, teams []string) (state.CommentaryEntry, error) {
	var fields map[string]any
	if err := sonic.Unmarshal(rec, &fields); err != nil || fields == nil {
		return state.CommentaryEntry{}, errors.New("record is not an object")
	}

	entry := state.CommentaryEntry{
		Minute:     tickerMinute(fields["elapsed"]),
		MinutePlus: tickerMinute(fields["elapsedPlus"]),
	}
	if text, ok := fields["text"].(string); ok {
		entry.Text = text
	}
	if side, ok := fields["teamEvent"].(string); ok {
		switch side {
		case "home":
			if len(teams) > 0 {
				entry.Team = teams[0]
			}
		case "away":
			if len(teams) > 1 {
				entry.Team = teams[1]
			}
		}
	}
	return entry, nil
}

// tickerMinute returns nil for missing, negative or non-integral values.
func tickerMinute(v any) *int {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		n = float64(parsed)
	default:
		return nil
	}
	if n < 0 || n != math.Trunc(n) || n > math.MaxInt16 {
		return nil
	}
	m := int(n)
	return &m
}
