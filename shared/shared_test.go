package shared

import (
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []float64
		want    Message
		wantErr bool
	}{
		{name: "tempo", args: []float64{250}, want: Message{Type: Tempo, Number: 250, HasNumber: true}},
		{name: "button", args: []float64{5}, want: Message{Type: Button, Number: 5, HasNumber: true}},
		{name: "switch-instrument", want: Message{Type: SwitchInstrument}},
		{name: "switch-instrument", args: []float64{3}, want: Message{Type: SwitchInstrument, Number: 3, HasNumber: true}},
		{name: "loadbang", want: Message{Type: Loadbang}},
		{name: "loadbang", args: []float64{1}, wantErr: true},
		{name: "button", args: []float64{1, 2}, wantErr: true},
		{name: "bang", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.name, tt.args...)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCommand(%q, %v) error = %v, wantErr %t", tt.name, tt.args, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseCommand(%q, %v) = %+v, want %+v", tt.name, tt.args, got, tt.want)
		}
	}
}

func TestEventString(t *testing.T) {
	if got := SwitchInstrument.String(); got != "switch-instrument" {
		t.Errorf("got %q", got)
	}
	if got := Event(42).String(); got != "event(42)" {
		t.Errorf("got %q", got)
	}
}
