package memory

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/vportnov/usermgmt-agent/chat"
)

func LoadTranscript(path string) ([]chat.Message, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var msgs []chat.Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func SaveTranscript(path string, msgs []chat.Message) error {
	b, err := json.MarshalIndent(msgs, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
