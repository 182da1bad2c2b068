package provider

import (
	"fmt"
	"strings"
	"testing"
)

func tickerBatch(records ...string) []byte {
	return []byte(`{"events":[` + strings.Join(records, ",") + `]}`)
}

func tickerRecord(i, elapsed int) string {
	return fmt.Sprintf(`{"text":"entry %d","teamEvent":"home","elapsed":%d}`, i, elapsed)
}

func TestDecodeCommentary_NegativeElapsedBecomesNoMinute(t *testing.T) {
	var records []string
	for i := range 9 {
		records = append(records, tickerRecord(i, 10+i))
	}
	records = append(records[:4], append([]string{`{"text":"sub","teamEvent":"away","elapsed":-1,"elapsedPlus":-1}`}, records[4:]...)...)

	entries, err := DecodeCommentary(tickerBatch(records...), []string{"Home FC", "Away FC"})
	if err != nil {
		t.Fatalf("DecodeCommentary error = %v, want nil", err)
	}
	if len(entries) != 10 {
		t.Fatalf("len(entries) = %d, want 10", len(entries))
	}
	withMinute := 0
	for _, e := range entries {
		if e.Minute != nil {
			withMinute++
		}
	}
	if withMinute != 9 {
		t.Fatalf("entries with minute = %d, want 9", withMinute)
	}
	sub := entries[4]
	if sub.Minute != nil || sub.MinutePlus != nil {
		t.Fatalf("sub minute = %v/%v, want nil/nil", sub.Minute, sub.MinutePlus)
	}
	if sub.Team != "Away FC" {
		t.Fatalf("sub team = %q, want Away FC", sub.Team)
	}
	if entries[0].Team != "Home FC" || *entries[0].Minute != 10 {
		t.Fatalf("entries[0] = %#v", entries[0])
	}
}

func TestDecodeCommentary_TruncatedBatchKeepsDecodedEntries(t *testing.T) {
	raw := []byte(`{"events":[` + tickerRecord(0, 1) + "," + tickerRecord(1, 2) + "," + tickerRecord(2, 3) + `,{"text":"cut`)

	entries, err := DecodeCommentary(raw, nil)
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if err == nil {
		t.Fatalf("error = nil, want invalid ltc json")
	}
	if !strings.HasPrefix(err.Error(), "invalid ltc json: ") || !strings.Contains(err.Error(), "head=") {
		t.Fatalf("error = %q, want invalid ltc json with head", err.Error())
	}
}

func TestDecodeCommentary_NonObjectRecordStopsDecoding(t *testing.T) {
	raw := tickerBatch(tickerRecord(0, 1), tickerRecord(1, 2), `42`, tickerRecord(3, 4))

	entries, err := DecodeCommentary(raw, nil)
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if err == nil || !strings.Contains(err.Error(), "events[2]") {
		t.Fatalf("error = %v, want failure at events[2]", err)
	}
}

func TestDecodeCommentary_FieldAnomaliesAreTolerated(t *testing.T) {
	raw := tickerBatch(
		`{"text":"a","elapsed":"12"}`,
		`{"text":"b","elapsed":"later"}`,
		`{"text":7,"elapsed":45.5,"teamEvent":"neutral"}`,
		`{"elapsed":90,"elapsedPlus":3}`,
	)
	entries, err := DecodeCommentary(raw, []string{"H", "A"})
	if err != nil {
		t.Fatalf("DecodeCommentary error = %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}
	if entries[0].Minute == nil || *entries[0].Minute != 12 {
		t.Fatalf("entries[0].Minute = %v, want 12", entries[0].Minute)
	}
	if entries[1].Minute != nil || entries[2].Minute != nil {
		t.Fatalf("bad elapsed values should map to nil minute")
	}
	if entries[2].Text != "" || entries[2].Team != "" {
		t.Fatalf("entries[2] = %#v, want empty text and team", entries[2])
	}
	if entries[3].MinutePlus == nil || *entries[3].MinutePlus != 3 {
		t.Fatalf("entries[3].MinutePlus = %v, want 3", entries[3].MinutePlus)
	}
}

func TestDecodeCommentary_EmptyAndMissing(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", `{}`, `{"events":null}`, `{"other":[1,2],"events":[]}`} {
		entries, err := DecodeCommentary([]byte(raw), nil)
		if err != nil || len(entries) != 0 {
			t.Fatalf("DecodeCommentary(%q) = %v, %v; want empty, nil", raw, entries, err)
		}
	}
	if _, err := DecodeCommentary([]byte(`[1,2]`), nil); err == nil {
		t.Fatalf("top-level array error = nil, want failure")
	}
}
