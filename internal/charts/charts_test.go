package charts_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/raysh454/policysim/internal/charts"
	"github.com/raysh454/policysim/internal/model"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]charts.Format{"svg": charts.FormatSVG, " PNG ": charts.FormatPNG} {
		got, err := charts.ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := charts.ParseFormat("gif"); err == nil {
		t.Error("expected error for gif")
	}
	if charts.FormatPNG.ContentType() != "image/png" || charts.FormatSVG.ContentType() != "image/svg+xml" {
		t.Error("unexpected content types")
	}
}

func TestRenderRegionDelta_SVG(t *testing.T) {
	regions := []model.RegionDelta{{Region: "A", DeltaMDR: -5}, {Region: "B", DeltaMDR: -1}}

	var buf bytes.Buffer
	if err := charts.RenderRegionDelta(&buf, regions, charts.FormatSVG, charts.Options{}); err != nil {
		t.Fatalf("RenderRegionDelta: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<svg") {
		t.Fatalf("expected svg output, got %.40q", out)
	}
	if !strings.Contains(out, charts.RegionDeltaTitle) {
		t.Error("expected title in svg")
	}
}

func TestRenderRegionDelta_AllZeroStillRenders(t *testing.T) {
	regions := []model.RegionDelta{{Region: "A", DeltaMDR: 0}}

	var buf bytes.Buffer
	if err := charts.RenderRegionDelta(&buf, regions, charts.FormatPNG, charts.Options{Width: 400, Height: 300}); err != nil {
		t.Fatalf("RenderRegionDelta: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("expected png signature")
	}
}

func TestRenderRiskLevels(t *testing.T) {
	counts := model.BucketCounts{model.RiskGreen: 1, model.RiskYellow: 1}.Ordered()

	var buf bytes.Buffer
	if err := charts.RenderRiskLevels(&buf, counts, charts.FormatSVG, charts.DefaultOptions()); err != nil {
		t.Fatalf("RenderRiskLevels: %v", err)
	}
	if !strings.Contains(buf.String(), charts.RiskLevelsTitle) {
		t.Error("expected title in svg")
	}
}

func TestRender_NoData(t *testing.T) {
	var buf bytes.Buffer
	if err := charts.RenderRegionDelta(&buf, nil, charts.FormatSVG, charts.Options{}); !errors.Is(err, charts.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if err := charts.RenderRiskLevels(&buf, nil, charts.FormatSVG, charts.Options{}); !errors.Is(err, charts.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written without data")
	}
}
