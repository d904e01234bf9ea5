package cli

import "testing"

func TestSplitFlag(t *testing.T) {
	tests := []struct {
		arg      string
		name     string
		value    string
		assigned bool
	}{
		{arg: "--log-level=debug", name: "--log-level", value: "debug", assigned: true},
		{arg: "--log-level", name: "--log-level", value: "", assigned: false},
		{arg: "--log-pretty=", name: "--log-pretty", value: "", assigned: true},
		{arg: "plain", name: "plain", value: "", assigned: false},
		{arg: "a=b=c", name: "a", value: "b=c", assigned: true},
	}

	for _, tt := range tests {
		name, value, assigned := splitFlag(tt.arg)
		if name != tt.name || value != tt.value || assigned != tt.assigned {
			t.Errorf("splitFlag(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.arg, name, value, assigned, tt.name, tt.value, tt.assigned)
		}
	}
}

func TestLogConfigScan(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "level with separate value",
			args: []string{"--log-level", "debug"},
			want: logConfig{Level: "debug"},
		},
		{
			name: "level with assigned value",
			args: []string{"--log-level=warn"},
			want: logConfig{Level: "warn"},
		},
		{
			name: "format with separate value",
			args: []string{"--log-format", "text"},
			want: logConfig{Format: "text"},
		},
		{
			name: "pretty enabled",
			args: []string{"--log-pretty"},
			want: logConfig{Pretty: true},
		},
		{
			name: "pretty negated",
			args: []string{"--no-log-pretty"},
			want: logConfig{Pretty: false},
		},
		{
			name: "pretty assigned false",
			args: []string{"--log-pretty=false"},
			want: logConfig{Pretty: false},
		},
		{
			name: "caller enabled",
			args: []string{"--log-caller"},
			want: logConfig{Caller: true},
		},
		{
			name: "negated caller assigned false",
			args: []string{"--no-log-caller=false"},
			want: logConfig{Caller: true},
		},
		{
			name: "level does not consume a following flag",
			args: []string{"--log-level", "--log-format", "text"},
			want: logConfig{Level: "", Format: "text"},
		},
		{
			name: "flags found among other arguments",
			args: []string{"eval", "--log-level", "debug", "2 + 3"},
			want: logConfig{Level: "debug"},
		},
		{
			name: "bad boolean value ignored",
			args: []string{"--log-pretty=maybe"},
			want: logConfig{Pretty: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg logConfig

			cfg.scan(tt.args)

			if cfg.Level != tt.want.Level {
				t.Errorf("Level = %q, want %q", cfg.Level, tt.want.Level)
			}

			if cfg.Format != tt.want.Format {
				t.Errorf("Format = %q, want %q", cfg.Format, tt.want.Format)
			}

			if cfg.Pretty != tt.want.Pretty {
				t.Errorf("Pretty = %v, want %v", cfg.Pretty, tt.want.Pretty)
			}

			if cfg.Caller != tt.want.Caller {
				t.Errorf("Caller = %v, want %v", cfg.Caller, tt.want.Caller)
			}
		})
	}
}

func TestLogConfigGroup(t *testing.T) {
	group := (*logConfig)(nil).group()

	if group.Key != "log" {
		t.Errorf("group key = %q, want %q", group.Key, "log")
	}

	if group.Title == "" {
		t.Error("group title is empty")
	}
}
