package server

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/ul-mds/pprl/bitvec"
	"github.com/ul-mds/pprl/digest"
	"github.com/ul-mds/pprl/filterspec"
	"github.com/ul-mds/pprl/hashscheme"
	"github.com/ul-mds/pprl/similarity"
	"github.com/ul-mds/pprl/transform"
)

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	sock := filepath.Join(t.TempDir(), "pprl.sock")
	s := New(Config{SocketPath: sock, MaxConcurrency: 4, IdleTimeout: 2 * time.Second})

	go func() {
		if err := s.Start(); err != nil {
			t.Logf("server stopped: %v", err)
		}
	}()

	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("unix", sock)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("could not connect to test server: %v", err)
	}
	_ = conn.Close()

	return s, sock
}

func sendLine(t *testing.T, sock string, req Request) map[string]interface{} {
	t.Helper()
	conn, err := net.Dial("unix", sock)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	if _, err := conn.Write(append(b, '\n')); err != nil {
		t.Fatalf("write request: %v", err)
	}

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(line, &out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return out
}

func TestServerPing(t *testing.T) {
	s, sock := startTestServer(t)
	defer s.Shutdown()

	out := sendLine(t, sock, Request{Action: "ping"})
	if out["error"] != nil {
		t.Fatalf("ping returned error: %v", out["error"])
	}
	if pong, _ := out["pong"].(bool); !pong {
		t.Fatalf("expected pong=true, got %v", out["pong"])
	}
}

func TestServerUnknownAction(t *testing.T) {
	s, sock := startTestServer(t)
	defer s.Shutdown()

	out := sendLine(t, sock, Request{Action: "bogus"})
	if out["error"] == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestServerTransform(t *testing.T) {
	s, sock := startTestServer(t)
	defer s.Shutdown()

	params, _ := json.Marshal(transformRequest{
		Entities: []WireEntity{
			{ID: "e1", Attributes: map[string]string{"firstname": "  Anna  "}},
		},
		Before: []transform.Transform{{Kind: transform.KindNormalize}},
	})

	out := sendLine(t, sock, Request{Action: "transform", Params: params})
	if out["error"] != nil {
		t.Fatalf("transform returned error: %v", out["error"])
	}
}

func TestServerMaskAndMatch(t *testing.T) {
	s, sock := startTestServer(t)
	defer s.Shutdown()

	maskParams, _ := json.Marshal(maskRequest{
		Entities: []WireEntity{
			{ID: "e1", Attributes: map[string]string{"firstname": "anna"}},
		},
		Attributes: []filterspec.AttributeConfig{{Name: "firstname", Q: 2, Pad: '_'}},
		Hash: filterspec.HashConfig{
			Digest:   digest.Config{Algorithms: []digest.Algorithm{digest.SHA256}},
			Strategy: hashscheme.DoubleHash,
		},
		Filter: filterspec.FilterSpec{Type: filterspec.CLK, CLK: &filterspec.CLKLayout{Size: 256, K: 5}},
	})

	out := sendLine(t, sock, Request{Action: "mask", Params: maskParams})
	if out["error"] != nil {
		t.Fatalf("mask returned error: %v", out["error"])
	}

	entitiesRaw, _ := json.Marshal(out["entities"])
	var wireEntities []WireBitVectorEntity
	if err := json.Unmarshal(entitiesRaw, &wireEntities); err != nil {
		t.Fatalf("decode mask response: %v", err)
	}
	if len(wireEntities) != 1 {
		t.Fatalf("expected 1 masked entity, got %d", len(wireEntities))
	}
	if _, err := bitvec.DecodeBase64(wireEntities[0].Vector); err != nil {
		t.Fatalf("masked vector does not decode: %v", err)
	}

	matchParams, _ := json.Marshal(matchRequest{
		Measure:   similarity.Dice,
		Threshold: 0.0,
		Domain:    wireEntities,
		Range:     wireEntities,
	})

	out = sendLine(t, sock, Request{Action: "match", Params: matchParams})
	if out["error"] != nil {
		t.Fatalf("match returned error: %v", out["error"])
	}
}

func TestServerStats(t *testing.T) {
	s, sock := startTestServer(t)
	defer s.Shutdown()

	params, _ := json.Marshal(statsRequest{
		Entities: []WireEntity{
			{ID: "e1", Attributes: map[string]string{"firstname": "ab"}},
		},
		Attributes: []filterspec.AttributeConfig{{Name: "firstname", Q: 2, Pad: '_'}},
	})

	out := sendLine(t, sock, Request{Action: "stats", Params: params})
	if out["error"] != nil {
		t.Fatalf("stats returned error: %v", out["error"])
	}
}
