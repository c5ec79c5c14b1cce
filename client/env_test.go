package client

import (
	"os"
	"testing"
)

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *EnvConfig
		wantErr bool
	}{
		{
			name: "all variables set",
			env: map[string]string{
				EnvServer: "ws://localhost:8080/ws",
				EnvName:   "bot-1",
				EnvGame:   "tictactoe",
				EnvSeed:   "12345",
			},
			want: &EnvConfig{
				ServerURL: "ws://localhost:8080/ws",
				Name:      "bot-1",
				Game:      "tictactoe",
				Seed:      12345,
			},
		},
		{
			name: "only required variables",
			env: map[string]string{
				EnvServer: "ws://localhost:8080/ws",
			},
			want: &EnvConfig{
				ServerURL: "ws://localhost:8080/ws",
			},
		},
		{
			name:    "missing server URL",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "invalid seed",
			env: map[string]string{
				EnvServer: "ws://localhost:8080/ws",
				EnvSeed:   "not-a-number",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			got, err := FromEnv()
			if (err != nil) != tt.wantErr {
				t.Errorf("FromEnv() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}

			if got.ServerURL != tt.want.ServerURL {
				t.Errorf("ServerURL = %v, want %v", got.ServerURL, tt.want.ServerURL)
			}
			if got.Name != tt.want.Name {
				t.Errorf("Name = %v, want %v", got.Name, tt.want.Name)
			}
			if got.Game != tt.want.Game {
				t.Errorf("Game = %v, want %v", got.Game, tt.want.Game)
			}
			if got.Seed != tt.want.Seed {
				t.Errorf("Seed = %v, want %v", got.Seed, tt.want.Seed)
			}
		})
	}
}

func TestSetEnv(t *testing.T) {
	env := []string{"EXISTING=value"}
	env = SetEnv(env, "NEW_KEY", "new_value")

	if len(env) != 2 {
		t.Errorf("Expected 2 environment variables, got %d", len(env))
	}
	if env[1] != "NEW_KEY=new_value" {
		t.Errorf("Expected 'NEW_KEY=new_value', got %s", env[1])
	}
}
