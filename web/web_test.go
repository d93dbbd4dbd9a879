package web

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"classfinder/models"
)

func readMockData(t *testing.T) []byte {
	t.Helper()
	f, err := StaticFS().Open("/" + MockDataFile)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return b
}

func TestMockDataIsAQueryResult(t *testing.T) {
	var result models.QueryResult
	if err := json.Unmarshal(readMockData(t), &result); err != nil {
		t.Fatalf("mock data does not decode: %v", err)
	}
	if result.Week == 0 || len(result.Buildings) == 0 {
		t.Fatalf("mock data is empty: %+v", result)
	}
	for _, b := range result.Buildings {
		if b.BestRoom.Room == "" || b.BestRoom.TimeRange == "" {
			t.Fatalf("incomplete building %+v", b)
		}
	}
}

func TestStaticFSServesAssets(t *testing.T) {
	if !bytes.Contains(IndexHTML(), []byte("/static/app.js")) {
		t.Fatal("index does not load app.js")
	}
	raw, err := staticFiles.ReadFile("static/" + MockDataFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(readMockData(t), raw) {
		t.Fatal("served mock data differs from the embedded file")
	}
}
