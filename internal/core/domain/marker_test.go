package domain_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/samirrijal/markermap/internal/core/domain"
)

func TestPosition_JSON(t *testing.T) {
	data, err := json.Marshal(domain.Position{Lat: 46.772397, Lng: 23.603139})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[46.772397,23.603139]" {
		t.Errorf("unexpected encoding %s", data)
	}

	var p domain.Position
	if err := json.Unmarshal([]byte("[1.5]"), &p); err == nil {
		t.Error("expected error for single-value position")
	}
}

func TestPosition_String(t *testing.T) {
	got := domain.Position{Lat: 46.7724, Lng: 23.6031}.String()
	if got != "46.772400, 23.603100" {
		t.Errorf("unexpected popup text %q", got)
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	markers := domain.DefaultMarkers()
	markers = append(markers, domain.NewMarker("Dorobantilor", domain.Position{Lat: -33.9, Lng: 151.2}))

	data, err := domain.EncodeSnapshot(markers)
	if err != nil {
		t.Fatal(err)
	}
	got, err := domain.DecodeSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, markers) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, markers)
	}
}

func TestDecodeSnapshot_LegacyFormat(t *testing.T) {
	legacy := `[{"position":[46.772397,23.603139],"name":"Dorobantilor"},{"position":[46.77,23.59],"name":"Teatrul"}]`
	got, err := domain.DecodeSnapshot([]byte(legacy))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(got))
	}
	if got[0].ID == "" || got[1].ID == "" || got[0].ID == got[1].ID {
		t.Errorf("expected distinct generated ids, got %q and %q", got[0].ID, got[1].ID)
	}
	if got[1].Name != "Teatrul" || got[1].Position.Lat != 46.77 {
		t.Errorf("unexpected marker %+v", got[1])
	}
}

func TestDecodeSnapshot_Corrupt(t *testing.T) {
	for _, in := range []string{
		`not json`,
		`{"position":[1,2],"name":"x"}`,
		`[{"position":[200,2],"name":"x"}]`,
		`[{"position":"here","name":"x"}]`,
		`[{"name":"x"}]`,
		`[{"position":null,"name":"x"}]`,
		`[null]`,
		`[{"position":[46.77,23.6],"name":"ok"},null]`,
	} {
		if _, err := domain.DecodeSnapshot([]byte(in)); !errors.Is(err, domain.ErrCorruptSnapshot) {
			t.Errorf("%s: expected ErrCorruptSnapshot, got %v", in, err)
		}
	}
}

func TestEncodeSnapshot_Empty(t *testing.T) {
	data, err := domain.EncodeSnapshot(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("expected [], got %s", data)
	}
}
