package influxdb_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/ventsim-core/internal/infrastructure/config"
	"github.com/nerrad567/ventsim-core/internal/infrastructure/influxdb"
)

// fakeInflux answers /ping and records line-protocol bodies sent to /api/v2/write.
type fakeInflux struct {
	mu     sync.Mutex
	writes []string
	status int
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ping":
		w.WriteHeader(http.StatusNoContent)
	case "/api/v2/write":
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.writes = append(f.writes, string(body))
		status := f.status
		f.mu.Unlock()
		if status == 0 {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeInflux) body() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.writes, "\n")
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "ventsim-test-token",
		Org:           "ventsim",
		Bucket:        "ventilation",
		BatchSize:     100,
		FlushInterval: 60,
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	if _, err := influxdb.Connect(cfg); !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	if _, err := influxdb.Connect(testConfig(srv.URL)); !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestClient_WriteSensorsFlushes(t *testing.T) {
	fake := &fakeInflux{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := influxdb.Connect(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	client.WriteSensors(influxdb.SensorSample{
		Serial:       "SN-1",
		Time:         time.Unix(1700000000, 0),
		OutdoorC:     10.5,
		SupplyFanPct: 50,
	})
	client.Flush()

	body := fake.body()
	if !strings.HasPrefix(body, "ventilation_sensors,serial=SN-1 ") {
		t.Errorf("write body = %q", body)
	}
	if !strings.Contains(body, "outdoor_c=10.5") || !strings.Contains(body, "supply_fan_pct=50i") {
		t.Errorf("write body missing fields: %q", body)
	}
}

func TestClient_WriteErrorCallback(t *testing.T) {
	fake := &fakeInflux{status: http.StatusBadRequest}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := influxdb.Connect(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	errCh := make(chan error, 1)
	client.SetOnError(func(err error) {
		select {
		case errCh <- err:
		default:
		}
	})

	client.WriteRegisterChange("SN-1", 2000, 220, 210, true, time.Now())
	client.Flush()

	select {
	case err := <-errCh:
		if !errors.Is(err, influxdb.ErrWriteFailed) {
			t.Errorf("callback error = %v, want ErrWriteFailed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("write error never reported")
	}
}

func TestClient_CloseStopsWrites(t *testing.T) {
	fake := &fakeInflux{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := influxdb.Connect(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
	client.WriteSensors(influxdb.SensorSample{Serial: "SN-1", Time: time.Now()})
	client.Flush()

	if body := fake.body(); body != "" {
		t.Errorf("write after Close reached server: %q", body)
	}
}

func TestNewSensorPoint(t *testing.T) {
	p := influxdb.NewSensorPoint(influxdb.SensorSample{
		Serial:        "SN-987654321",
		Time:          time.Unix(0, 42),
		OutdoorC:      10,
		SupplyC:       18.25,
		ExtractC:      21.5,
		HumidityPct:   45,
		SupplyFanPct:  50,
		ExtractFanPct: 50,
		HeaterPct:     40,
	})

	line := write.PointToLineProtocol(p, time.Nanosecond)

	want := "ventilation_sensors,serial=SN-987654321 " +
		"cooler_pct=0i,extract_c=21.5,extract_fan_pct=50i,heater_pct=40i,humidity_pct=45," +
		"outdoor_c=10,supply_c=18.25,supply_fan_pct=50i 42\n"
	if line != want {
		t.Errorf("line protocol =\n%q\nwant\n%q", line, want)
	}
}

func TestNewRegisterChangePoint(t *testing.T) {
	tests := []struct {
		name     string
		external bool
		want     string
	}{
		{"external", true, "register_changes,address=1160,serial=SN-1,source=external new=3i,old=0i 7\n"},
		{"internal", false, "register_changes,address=1160,serial=SN-1,source=internal new=3i,old=0i 7\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := influxdb.NewRegisterChangePoint("SN-1", 1160, 0, 3, tt.external, time.Unix(0, 7))
			if got := write.PointToLineProtocol(p, time.Nanosecond); got != tt.want {
				t.Errorf("line protocol = %q, want %q", got, tt.want)
			}
		})
	}
}
