package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rcliao/rivebrain/internal/model"
)

// Export returns a snapshot's brain as indented JSON. An empty id exports
// the latest snapshot.
func (s *SQLiteStore) Export(ctx context.Context, id string) ([]byte, error) {
	brain, _, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(brain, "", "  ")
}

// Import saves a brain from the JSON produced by Export.
func (s *SQLiteStore) Import(ctx context.Context, data []byte, source string) (*model.Snapshot, error) {
	brain := model.NewBrain()
	if err := json.Unmarshal(data, brain); err != nil {
		return nil, fmt.Errorf("parse brain: %w", err)
	}
	for name, topic := range brain.Topics {
		if topic == nil {
			brain.Topics[name] = &model.Topic{}
			continue
		}
		for pattern, trig := range topic.Triggers {
			if trig == nil {
				topic.Triggers[pattern] = &model.Trigger{}
			}
		}
	}
	for _, byPrev := range brain.Previous {
		for _, triggers := range byPrev {
			for pattern, trig := range triggers {
				if trig == nil {
					triggers[pattern] = &model.Trigger{}
				}
			}
		}
	}
	for name, obj := range brain.Objects {
		if obj == nil {
			brain.Objects[name] = &model.Object{Name: name}
		}
	}
	return s.Save(ctx, SaveParams{Source: source, Brain: brain})
}
