package sunspot

import (
	"testing"
	"time"
)

func hourlyWindow(start time.Time, cloud, sw, precip []float64) HourlySeries {
	n := len(cloud)
	h := HourlySeries{
		Time:      make([]time.Time, n),
		Cloud:     cloud,
		Shortwave: sw,
		Precip:    precip,
		Temp:      make([]float64, n),
	}
	for i := 0; i < n; i++ {
		h.Time[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return h
}

func TestSunnyWindowStopsAtFirstBreach(t *testing.T) {
	start := time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC)
	s := WeatherSample{
		Hourly: hourlyWindow(start,
			[]float64{20, 20, 80, 20},
			[]float64{90, 90, 90, 90},
			[]float64{0, 0, 0, 0},
		),
	}

	minutes, until := SunnyWindow(s, DefaultSunnyLike())
	if minutes != 120 {
		t.Fatalf("sunny minutes = %d, want 120", minutes)
	}
	if until == nil || !until.Equal(start.Add(time.Hour)) {
		t.Fatalf("sunny until = %v, want %v", until, start.Add(time.Hour))
	}
}

func TestSunnyWindowLeadingBreach(t *testing.T) {
	start := time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC)
	s := WeatherSample{
		Hourly: hourlyWindow(start,
			[]float64{90, 10, 10, 10},
			[]float64{90, 200, 200, 200},
			[]float64{0, 0, 0, 0},
		),
	}

	// A sunny stretch that only starts later does not count.
	minutes, until := SunnyWindow(s, DefaultSunnyLike())
	if minutes != 0 {
		t.Fatalf("sunny minutes = %d, want 0", minutes)
	}
	if until != nil {
		t.Fatalf("sunny until = %v, want nil", until)
	}
}

func TestSunnyWindowEmptySeries(t *testing.T) {
	minutes, until := SunnyWindow(WeatherSample{}, DefaultSunnyLike())
	if minutes != 0 || until != nil {
		t.Fatalf("empty series gave %d minutes, until %v", minutes, until)
	}
}

func TestClassifyBounds(t *testing.T) {
	like := DefaultSunnyLike()

	// Cloud and shortwave bounds are inclusive, precipitation is strict.
	cases := []struct {
		cloud, sw, precip float64
		want              bool
	}{
		{20, 90, 0, true},
		{45, 80, 0.19, true},
		{46, 200, 0, false},
		{20, 79, 0, false},
		{20, 200, 0.2, false},
	}
	for _, tc := range cases {
		if got := like.Classify(tc.cloud, tc.sw, tc.precip); got != tc.want {
			t.Errorf("Classify(%v,%v,%v) = %v, want %v", tc.cloud, tc.sw, tc.precip, got, tc.want)
		}
	}
}

func TestCompositeScore(t *testing.T) {
	now := DefaultSunnyNow()

	dull := WeatherSample{CloudCoverPct: 100, ShortwaveRadiation: 0, PrecipitationMm: 1}
	if got := CompositeScore(dull, now); got != -140-180 {
		t.Errorf("dull score = %v", got)
	}

	bright := WeatherSample{CloudCoverPct: 10, ShortwaveRadiation: 400, PrecipitationMm: 0}
	want := 400 - 14.0 + 100
	if got := CompositeScore(bright, now); got != want {
		t.Errorf("bright score = %v, want %v", got, want)
	}
}
