package bluefruit

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	replies  map[string]string
	rx       [][]byte
	sent     [][]byte
	commands []string
	resets   int
	err      error
	closeErr error
}

func (*fakeTransport) device() string { return "/dev/fake" }

func (f *fakeTransport) reset() error {
	f.resets++
	return f.err
}

func (f *fakeTransport) atCommand(at string) ([]byte, error) {
	f.commands = append(f.commands, at)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.replies[at]), nil
}

func (f *fakeTransport) writeData(p []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, p)
	return nil
}

func (f *fakeTransport) readData() ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.rx) == 0 {
		return nil, nil
	}
	p := f.rx[0]
	f.rx = f.rx[1:]
	return p, nil
}

func (f *fakeTransport) close() error { return f.closeErr }

func TestCommand(t *testing.T) {
	cases := []struct {
		at    string
		reply string
		want  string
		err   error
	}{
		{"ATI", "BLESPIFRIEND\r\n0.8.1\r\nOK\r\n", "BLESPIFRIEND\r\n0.8.1", nil},
		{"AT+GAPGETCONN", "0\r\nOK\r\n", "0", nil},
		{"ATE=0", "OK\r\n", "", nil},
		{"AT+FOO", "ERROR\r\n", "", ErrCommand},
		{"AT+BLEGETADDR", "", "", ErrNoStatus},
	}
	for _, c := range cases {
		t.Run(c.at, func(t *testing.T) {
			m := &Module{t: &fakeTransport{replies: map[string]string{c.at: c.reply}}}
			assert.Equal(t, c.want, m.Command(c.at))
			assert.Equal(t, c.err, errors.Cause(m.Error()))
			if c.err != nil {
				assert.Contains(t, m.Error().Error(), c.at)
			}
		})
	}
}

func TestQueries(t *testing.T) {
	f := &fakeTransport{replies: map[string]string{
		"ATI":           "BLESPIFRIEND\r\nOK\r\n",
		"AT+BLEGETADDR": "E4:C6:C7:31:95:11\r\nOK\r\n",
		"AT+GAPGETCONN": "1\r\nOK\r\n",
	}}
	m := &Module{t: f}
	assert.Equal(t, "BLESPIFRIEND", m.Info())
	assert.Equal(t, "E4:C6:C7:31:95:11", m.Address())
	assert.True(t, m.Connected())
	assert.NoError(t, m.Error())
	assert.Equal(t, []string{"ATI", "AT+BLEGETADDR", "AT+GAPGETCONN"}, f.commands)
}

func TestStickyError(t *testing.T) {
	f := &fakeTransport{
		replies: map[string]string{"ATI": "BLESPIFRIEND\r\nOK\r\n"},
		rx:      [][]byte{[]byte("hello")},
	}
	m := &Module{t: f}
	m.SetError(ErrTimeout)
	assert.Equal(t, "", m.Info())
	m.Write([]byte("data"))
	assert.Nil(t, m.Read())
	m.Reset()
	assert.Empty(t, f.commands)
	assert.Empty(t, f.sent)
	assert.Len(t, f.rx, 1)
	assert.Zero(t, f.resets)
	assert.Equal(t, Statistics{}, m.Statistics())
	assert.Equal(t, ErrTimeout, m.Error())
}

func TestTransportError(t *testing.T) {
	f := &fakeTransport{err: ErrOverflow}
	m := &Module{t: f}
	m.Write([]byte("data"))
	assert.Equal(t, ErrOverflow, m.Error())
	assert.Equal(t, Statistics{}, m.Statistics())

	m = &Module{t: f}
	assert.Nil(t, m.Read())
	assert.Equal(t, ErrOverflow, m.Error())
}

func TestStatistics(t *testing.T) {
	f := &fakeTransport{rx: [][]byte{[]byte("abc"), []byte("defgh")}}
	m := &Module{t: f}
	m.Write([]byte("hello"))
	m.Write(nil)
	m.Write([]byte("!"))
	assert.Equal(t, []byte("abc"), m.Read())
	assert.Equal(t, []byte("defgh"), m.Read())
	assert.Nil(t, m.Read())
	require.NoError(t, m.Error())
	want := Statistics{
		Bytes:   Counts{Sent: 6, Received: 8},
		Packets: Counts{Sent: 2, Received: 2},
	}
	assert.Equal(t, want, m.Statistics())
	assert.Len(t, f.sent, 2)
}

func TestClose(t *testing.T) {
	closeErr := errors.New("close failed")
	cases := []struct {
		name  string
		first error
		want  error
	}{
		{"no prior error", nil, closeErr},
		{"keeps first error", ErrCommand, ErrCommand},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := &Module{t: &fakeTransport{closeErr: closeErr}, err: c.first}
			m.Close()
			assert.Equal(t, c.want, m.Error())
		})
	}
}

func TestReset(t *testing.T) {
	f := &fakeTransport{}
	m := &Module{t: f}
	m.Reset()
	assert.Equal(t, 1, f.resets)
	assert.NoError(t, m.Error())
	assert.Equal(t, "/dev/fake", m.Device())
}
