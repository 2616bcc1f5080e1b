package halite

import "testing"

func TestCommandString(t *testing.T) {
	cases := []struct {
		cmd  Command
		want string
	}{
		{Move(3, North), "m 3 n"},
		{Move(12, West), "m 12 w"},
		{Stay(0), "m 0 o"},
		{Spawn(), "g"},
	}
	for _, tc := range cases {
		if got := tc.cmd.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestEncodeCommands(t *testing.T) {
	cases := []struct {
		cmds []Command
		want string
	}{
		{nil, ""},
		{[]Command{Spawn()}, "g"},
		{[]Command{Move(1, East), Stay(2), Spawn(), Move(4, South)}, "m 1 e m 2 o g m 4 s"},
	}
	for _, tc := range cases {
		if got := EncodeCommands(tc.cmds); got != tc.want {
			t.Errorf("EncodeCommands(%v) = %q, want %q", tc.cmds, got, tc.want)
		}
	}
}
