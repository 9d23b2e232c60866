package checkpoints

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// saveJSON saves checkpoint in JSON format
func (cs *CheckpointSaver) saveJSON(checkpoint *Checkpoint, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ") // Pretty print JSON

	if err := encoder.Encode(checkpoint); err != nil {
		return fmt.Errorf("failed to encode checkpoint: %v", err)
	}

	return nil
}

// loadJSON loads checkpoint from JSON format
func (cs *CheckpointSaver) loadJSON(path string) (*Checkpoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file: %v", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	decoder := json.NewDecoder(file)

	if err := decoder.Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %v", err)
	}

	return &checkpoint, nil
}

// saveCBOR saves checkpoint in CBOR format
func (cs *CheckpointSaver) saveCBOR(checkpoint *Checkpoint, path string) error {
	data, err := cbor.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %v", err)
	}

	return nil
}

// loadCBOR loads checkpoint from CBOR format
func (cs *CheckpointSaver) loadCBOR(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint file: %v", err)
	}

	var checkpoint Checkpoint
	if err := cbor.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %v", err)
	}

	return &checkpoint, nil
}

// saveBinary saves checkpoint as a protobuf-encoded Struct. The checkpoint
// is bridged through its JSON representation so the wire layout stays in
// lockstep with the JSON format's field names.
func (cs *CheckpointSaver) saveBinary(checkpoint *Checkpoint, path string) error {
	raw, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("failed to build checkpoint field map: %v", err)
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("failed to build checkpoint struct: %v", err)
	}

	data, err := proto.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %v", err)
	}

	return nil
}

// loadBinary loads a protobuf-encoded checkpoint
func (cs *CheckpointSaver) loadBinary(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint file: %v", err)
	}

	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %v", err)
	}

	raw, err := st.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild checkpoint fields: %v", err)
	}

	var checkpoint Checkpoint
	if err := json.Unmarshal(raw, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %v", err)
	}

	return &checkpoint, nil
}
