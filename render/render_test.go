package render

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

func testFrame() *Frame {
	f := &Frame{
		Step: 3,
		NS:   entity.Signal{State: mapv2.LightState_LIGHT_STATE_GREEN, TimeToRed: 2},
		EW:   entity.Signal{State: mapv2.LightState_LIGHT_STATE_RED},
	}
	for d := range f.Lanes {
		f.Lanes[d] = make([]entity.Cell, 8)
	}
	f.Lanes[entity.North][1] = entity.Cell{Occupied: true, ID: 0, Class: entity.Car}
	f.Lanes[entity.North][2] = entity.Cell{Occupied: true, ID: 0, Class: entity.Car}
	f.Lanes[entity.East][3] = entity.Cell{Occupied: true, ID: 1, Class: entity.Truck}
	f.Lanes[entity.East][4] = entity.Cell{Occupied: true, ID: 2, Class: entity.SUV}
	return f
}

func TestConsoleDraw(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, nil, 3)
	require.NoError(t, c.Draw(testFrame()))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "step 3  NS=green(2) EW=red(0)", lines[0])
	assert.Equal(t, "north  .cc|.....", lines[1])
	assert.Equal(t, "west   ...|.....", lines[2])
	assert.Equal(t, "south  ...|.....", lines[3])
	assert.Equal(t, "east   ...|ts...", lines[4])
	assert.NoError(t, c.Close())
}

func TestConsoleInteractive(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, strings.NewReader("\n\n"), 3)
	require.NoError(t, c.Draw(testFrame()))
	require.NoError(t, c.Draw(testFrame()))
	// 输入耗尽后不再阻塞
	require.NoError(t, c.Draw(testFrame()))
	assert.Equal(t, 3, strings.Count(buf.String(), "step 3"))
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Draw(testFrame()))
	var got Frame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, int32(3), got.Step)
	assert.Equal(t, entity.Truck, got.Lanes[entity.East][3].Class)
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, got.NS.State)

	require.NoError(t, hub.Close())
	assert.Equal(t, 0, hub.Clients())
}

func TestFrameJSONKeepsCarClass(t *testing.T) {
	data, err := json.Marshal(testFrame())
	require.NoError(t, err)
	// 车型Car与车辆ID 0均为零值，仍需写出
	assert.Contains(t, string(data), `{"occupied":true,"id":0,"class":0}`)
}

func TestHubDropsStalledClient(t *testing.T) {
	old := writeWait
	writeWait = 50 * time.Millisecond
	defer func() { writeWait = old }()

	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	// 客户端连接后从不读取
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	f := &Frame{}
	for d := range f.Lanes {
		f.Lanes[d] = make([]entity.Cell, 20000)
		for i := range f.Lanes[d] {
			f.Lanes[d][i] = entity.Cell{Occupied: true, ID: int32(i), Class: entity.Truck}
		}
	}
	for i := 0; i < 200 && hub.Clients() > 0; i++ {
		start := time.Now()
		require.NoError(t, hub.Draw(f))
		require.Less(t, time.Since(start), 2*time.Second)
	}
	assert.Equal(t, 0, hub.Clients())
}
