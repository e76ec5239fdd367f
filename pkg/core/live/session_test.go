package live

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{}

// fakeLiveServer speaks just enough of the protocol to drive a
// session: it acks setup, then hands the connection to script.
func fakeLiveServer(t *testing.T, script func(conn *websocket.Conn, setup *clientFrame)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var setup clientFrame
		if err := conn.ReadJSON(&setup); err != nil {
			t.Errorf("read setup: %v", err)
			return
		}
		if setup.Setup == nil {
			t.Error("first frame is not a setup frame")
			return
		}
		if err := conn.WriteJSON(&serverFrame{SetupComplete: &struct{}{}}); err != nil {
			t.Errorf("write setup ack: %v", err)
			return
		}
		script(conn, &setup)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func connectTest(t *testing.T, srv *httptest.Server, cfg SessionConfig) *Session {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := Connect(ctx, "test-key", cfg, WithEndpoint(wsURL(srv)))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return session
}

func TestConnectSendsSetup(t *testing.T) {
	setupCh := make(chan *clientFrame, 1)
	srv := fakeLiveServer(t, func(conn *websocket.Conn, setup *clientFrame) {
		setupCh <- setup
		conn.ReadMessage() // hold until client closes
	})
	defer srv.Close()

	session := connectTest(t, srv, SessionConfig{
		Voice:             "Charon",
		SystemInstruction: "Host a quiz.",
	})
	defer session.Close()

	setup := <-setupCh
	if setup.Setup.Model != "models/"+DefaultModel {
		t.Errorf("model: got %q", setup.Setup.Model)
	}
	if got := setup.Setup.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName; got != "Charon" {
		t.Errorf("voice: got %q", got)
	}
}

func TestSendAudioFrames(t *testing.T) {
	frames := make(chan *clientFrame, 1)
	srv := fakeLiveServer(t, func(conn *websocket.Conn, _ *clientFrame) {
		var frame clientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			t.Errorf("read audio frame: %v", err)
			return
		}
		frames <- &frame
		conn.ReadMessage()
	})
	defer srv.Close()

	session := connectTest(t, srv, SessionConfig{})
	defer session.Close()

	pcm := []byte{0x01, 0x00, 0xff, 0x7f}
	if err := session.SendAudio(pcm); err != nil {
		t.Fatalf("SendAudio: %v", err)
	}

	frame := <-frames
	if frame.RealtimeInput == nil || len(frame.RealtimeInput.MediaChunks) != 1 {
		t.Fatal("expected one media chunk")
	}
	chunk := frame.RealtimeInput.MediaChunks[0]
	if chunk.MIMEType != "audio/pcm;rate=16000" {
		t.Errorf("mime type: got %q", chunk.MIMEType)
	}
	got, err := base64.StdEncoding.DecodeString(chunk.Data)
	if err != nil || string(got) != string(pcm) {
		t.Errorf("chunk data: got %x (err %v), want %x", got, err, pcm)
	}
}

func TestServerContentEvents(t *testing.T) {
	pcm := []byte("fake-pcm-bytes")
	srv := fakeLiveServer(t, func(conn *websocket.Conn, _ *clientFrame) {
		conn.WriteJSON(&serverFrame{ServerContent: &serverContentFrame{
			ModelTurn: &wireModelTurn{Parts: []wirePart{{
				InlineData: &wireBlob{
					MIMEType: "audio/pcm;rate=24000",
					Data:     base64.StdEncoding.EncodeToString(pcm),
				},
			}}},
		}})
		conn.WriteJSON(&serverFrame{ServerContent: &serverContentFrame{TurnComplete: true}})
		conn.ReadMessage()
	})
	defer srv.Close()

	session := connectTest(t, srv, SessionConfig{})
	defer session.Close()

	chunk := nextEvent(t, session).(*AudioChunkEvent)
	if string(chunk.PCM) != string(pcm) {
		t.Errorf("audio chunk: got %q", chunk.PCM)
	}
	if _, ok := nextEvent(t, session).(*TurnCompleteEvent); !ok {
		t.Error("expected turn complete event")
	}
}

func TestInterruptedBeforeTrailingAudio(t *testing.T) {
	srv := fakeLiveServer(t, func(conn *websocket.Conn, _ *clientFrame) {
		conn.WriteJSON(&serverFrame{ServerContent: &serverContentFrame{
			Interrupted: true,
			ModelTurn: &wireModelTurn{Parts: []wirePart{{
				InlineData: &wireBlob{
					MIMEType: "audio/pcm;rate=24000",
					Data:     base64.StdEncoding.EncodeToString([]byte("tail")),
				},
			}}},
		}})
		conn.ReadMessage()
	})
	defer srv.Close()

	session := connectTest(t, srv, SessionConfig{})
	defer session.Close()

	if _, ok := nextEvent(t, session).(*InterruptedEvent); !ok {
		t.Fatal("expected interrupted event first")
	}
	if _, ok := nextEvent(t, session).(*AudioChunkEvent); !ok {
		t.Error("expected trailing audio chunk after interruption")
	}
}

func TestServerCloseEndsEvents(t *testing.T) {
	srv := fakeLiveServer(t, func(conn *websocket.Conn, _ *clientFrame) {
		conn.Close()
	})
	defer srv.Close()

	session := connectTest(t, srv, SessionConfig{})
	defer session.Close()

	for {
		select {
		case event, ok := <-session.Events():
			if !ok {
				return // channel closed, session ended cleanly
			}
			if closed, isClosed := event.(*ClosedEvent); isClosed && closed.Reason == "" {
				t.Error("server-side close should carry a reason")
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for session to end")
		}
	}
}

func TestSendAudioAfterClose(t *testing.T) {
	srv := fakeLiveServer(t, func(conn *websocket.Conn, _ *clientFrame) {
		conn.ReadMessage()
	})
	defer srv.Close()

	session := connectTest(t, srv, SessionConfig{})
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := session.SendAudio([]byte{1, 2}); err == nil {
		t.Error("expected error sending after close")
	}
	// Close again is a no-op.
	if err := session.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestConnectRejectsBadAck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var setup clientFrame
		conn.ReadJSON(&setup)
		conn.WriteJSON(&serverFrame{ServerContent: &serverContentFrame{TurnComplete: true}})
	}))
	defer srv.Close()

	_, err := Connect(context.Background(), "test-key", SessionConfig{}, WithEndpoint(wsURL(srv)))
	if err == nil {
		t.Fatal("expected error for missing setup ack")
	}
	if !strings.Contains(err.Error(), "setup ack") {
		t.Errorf("error: %v", err)
	}
}

func nextEvent(t *testing.T, s *Session) Event {
	t.Helper()
	select {
	case event, ok := <-s.Events():
		if !ok {
			t.Fatal("events channel closed")
		}
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestUnusedJSONField(t *testing.T) {
	// Unknown server fields must not break decoding.
	var frame serverFrame
	raw := `{"serverContent":{"modelTurn":{"parts":[{"text":"spoken transcript"}]},"turnComplete":true},"usageMetadata":{"totalTokenCount":42}}`
	if err := json.Unmarshal([]byte(raw), &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if frame.ServerContent == nil || !frame.ServerContent.TurnComplete {
		t.Error("turnComplete not decoded")
	}
}
