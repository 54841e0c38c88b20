package broadcast

import (
	"errors"
	"net"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/cjeanneret/OrniPad/internal/telemetry"
)

// recordingSender stores frames, failing while err is set.
type recordingSender struct {
	frames []telemetry.Frame
	err    error
	closed bool
}

func (s *recordingSender) Send(f telemetry.Frame) error {
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *recordingSender) Close() error {
	s.closed = true
	return nil
}

func TestUDPSender_Loopback(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer pc.Close()

	s, err := NewUDPSender(pc.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSender: %v", err)
	}
	defer s.Close()

	want := telemetry.EncodeFrame(telemetry.ControlState{Frequency: 30, Roll: -10, Pitch: 20})
	if err := s.Send(want); err != nil {
		t.Fatalf("Send: %v", err)
	}

	buf := make([]byte, 16)
	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if n != telemetry.FrameSize {
		t.Fatalf("datagram is %d bytes, want %d", n, telemetry.FrameSize)
	}
	if got := [3]byte(buf[:3]); got != [3]byte{30, 246, 20} {
		t.Errorf("payload = % x, want 1e f6 14", got)
	}
	cs, err := telemetry.DecodeFrame(buf[:n])
	if err != nil || cs.Roll != -10 || cs.Pitch != 20 || cs.Frequency != 30 {
		t.Errorf("decoded %+v, err %v", cs, err)
	}
}

func TestNewUDPSender_BadAddress(t *testing.T) {
	if _, err := NewUDPSender("no-port-here"); err == nil {
		t.Error("expected error for address without port")
	}
}

func TestTask_TickSendsCurrentValues(t *testing.T) {
	state := telemetry.NewState()
	primary, mirror := &recordingSender{}, &recordingSender{}
	task := NewTask(state, primary, mirror)

	state.StoreAttitude(-45, 45)
	state.StoreFrequency(50)
	task.Tick()
	state.StoreAttitude(0, 0)
	task.Tick()

	want := []telemetry.Frame{{50, 0xd3, 45}, {50, 0, 0}}
	for _, s := range []*recordingSender{primary, mirror} {
		if len(s.frames) != len(want) {
			t.Fatalf("got %d frames, want %d", len(s.frames), len(want))
		}
		for i := range want {
			if s.frames[i] != want[i] {
				t.Errorf("frame %d = % x, want % x", i, s.frames[i], want[i])
			}
		}
	}
	if st := task.Stats(); st.Sent != 4 || st.Failed != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestTask_FailuresCountedNotRetried(t *testing.T) {
	state := telemetry.NewState()
	bad := &recordingSender{err: errors.New("network unreachable")}
	good := &recordingSender{}
	task := NewTask(state, bad, good)

	for i := 0; i < 3; i++ {
		task.Tick()
	}
	bad.err = nil
	task.Tick()

	if len(bad.frames) != 1 {
		t.Errorf("failed sender got %d frames after recovery, want 1", len(bad.frames))
	}
	if len(good.frames) != 4 {
		t.Errorf("a failing sender must not block the others: good got %d", len(good.frames))
	}
	if st := task.Stats(); st.Sent != 5 || st.Failed != 3 {
		t.Errorf("stats = %+v, want sent 5 failed 3", st)
	}
}

func TestTask_Close(t *testing.T) {
	a, b := &recordingSender{}, &recordingSender{}
	if err := NewTask(telemetry.NewState(), a, b).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("every sender should be closed")
	}
}

func TestBrokerURL(t *testing.T) {
	cases := map[string]string{
		"localhost":             "tcp://localhost:1883",
		"10.0.0.2:1884":         "tcp://10.0.0.2:1884",
		"ssl://broker.lan:8883": "ssl://broker.lan:8883",
		"tcp://broker.lan:1883": "tcp://broker.lan:1883",
	}
	for in, want := range cases {
		if got := BrokerURL(in); got != want {
			t.Errorf("BrokerURL(%q) = %q, want %q", in, got, want)
		}
	}
}

// fakeClient records publishes; methods it does not override panic.
type fakeClient struct {
	mqtt.Client
	open     bool
	topics   []string
	payloads [][]byte
	qos      []byte
	quiesced []uint
}

func (c *fakeClient) IsConnectionOpen() bool { return c.open }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.topics = append(c.topics, topic)
	c.qos = append(c.qos, qos)
	c.payloads = append(c.payloads, append([]byte(nil), payload.([]byte)...))
	return nil
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.quiesced = append(c.quiesced, quiesce)
}

func TestMQTTSender_Publish(t *testing.T) {
	c := &fakeClient{open: true}
	s := newMQTTSender(c, "ornipad/telemetry")

	if err := s.Send(telemetry.Frame{5, 0xff, 1}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(c.topics) != 1 || c.topics[0] != "ornipad/telemetry" || c.qos[0] != 0 {
		t.Fatalf("publish = %v qos %v", c.topics, c.qos)
	}
	if string(c.payloads[0]) != string([]byte{5, 0xff, 1}) {
		t.Errorf("payload = % x", c.payloads[0])
	}

	s.Close()
	if len(c.quiesced) != 1 {
		t.Error("Close should disconnect the client")
	}
}

func TestMQTTSender_NotConnected(t *testing.T) {
	c := &fakeClient{}
	s := newMQTTSender(c, "t")
	if err := s.Send(telemetry.Frame{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
	if len(c.topics) != 0 {
		t.Error("nothing should be published while disconnected")
	}
}
