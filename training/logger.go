package training

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/go-motion/checkpoints"
	"github.com/tsawler/go-motion/visualizer"
)

// gifFrameDelay is the per-frame delay of visualization animations, in
// hundredths of a second.
const gifFrameDelay = 10

// LoggerConfig contains configuration for a training Logger. Zero-value
// fields fall back to the defaults from DefaultLoggerConfig.
type LoggerConfig struct {
	// LogDir is the output directory, created if absent.
	LogDir string
	// LogFileName is the text log file name inside LogDir.
	LogFileName string
	// ReportInterval is the iteration count between score flushes and
	// visualization writes.
	ReportInterval int
	// CheckpointInterval is the iteration count between checkpoints.
	CheckpointInterval int
	// PadWidth is the zero-pad width for iteration-derived filenames.
	PadWidth int
	// CheckpointFormat selects the checkpoint serialization.
	CheckpointFormat checkpoints.CheckpointFormat
}

// DefaultLoggerConfig returns the default logger configuration for a
// log directory.
func DefaultLoggerConfig(logDir string) LoggerConfig {
	return LoggerConfig{
		LogDir:             logDir,
		LogFileName:        "log.txt",
		ReportInterval:     100,
		CheckpointInterval: 1000,
		PadWidth:           8,
		CheckpointFormat:   checkpoints.FormatJSON,
	}
}

// Logger owns the training-iteration counter, the rolling loss buffer, the
// text log file, and the periodic score/visualization/checkpoint triggers
// of one training run. It drives model evaluation for visualization but
// never mutates model parameters; parameter state moves only through
// checkpoints.
//
// A Logger is single-threaded: Log blocks its caller for file
// writes, forward passes, and animation encoding, and exactly one Logger
// instance is expected per training process.
type Logger struct {
	config    LoggerConfig
	logFile   *os.File
	model     Model
	optimizer Optimizer
	saver     *checkpoints.CheckpointSaver
	vis       *visualizer.Visualizer

	iter     int
	buffer   lossBuffer
	history  ReportHistory
	progress *ProgressBar
	closed   bool
}

// NewLogger creates a Logger for the given model and optional optimizer
// (pass nil to checkpoint without optimizer state). The log directory is
// created if absent and the text log is opened in append mode.
func NewLogger(model Model, optimizer Optimizer, config LoggerConfig) (*Logger, error) {
	if model == nil {
		return nil, fmt.Errorf("logger requires a model")
	}
	if config.LogDir == "" {
		return nil, fmt.Errorf("logger requires a log directory")
	}

	defaults := DefaultLoggerConfig(config.LogDir)
	if config.LogFileName == "" {
		config.LogFileName = defaults.LogFileName
	}
	if config.ReportInterval <= 0 {
		config.ReportInterval = defaults.ReportInterval
	}
	if config.CheckpointInterval <= 0 {
		config.CheckpointInterval = defaults.CheckpointInterval
	}
	if config.PadWidth <= 0 {
		config.PadWidth = defaults.PadWidth
	}

	if err := os.MkdirAll(config.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	logFile, err := os.OpenFile(filepath.Join(config.LogDir, config.LogFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	return &Logger{
		config:    config,
		logFile:   logFile,
		model:     model,
		optimizer: optimizer,
		saver:     checkpoints.NewCheckpointSaver(config.CheckpointFormat),
		vis:       visualizer.New(),
	}, nil
}

// Iteration returns the most recently logged iteration.
func (l *Logger) Iteration() int {
	return l.iter
}

// History returns the accumulated report history.
func (l *Logger) History() *ReportHistory {
	return &l.history
}

// AttachProgress attaches a progress bar that is updated with the raw loss
// values of every logged iteration.
func (l *Logger) AttachProgress(progress *ProgressBar) {
	l.progress = progress
}

// Log records one training iteration. The losses are buffered; on report
// iterations the buffered means are flushed to the text log and the batch
// is rendered into reconstruction and transfer animations, and on
// checkpoint iterations a checkpoint is written. Any failure propagates to
// the caller and aborts the remaining work of this call.
func (l *Logger) Log(iteration int, losses []LossEntry, batch *Batch) error {
	l.iter = iteration

	if err := l.buffer.append(losses); err != nil {
		return fmt.Errorf("failed to buffer losses: %v", err)
	}

	if l.progress != nil {
		metrics := make(map[string]float64, len(losses))
		for _, entry := range losses {
			metrics[entry.Name] = entry.Value
		}
		l.progress.Update(iteration, metrics)
	}

	if iteration%l.config.ReportInterval == 0 {
		if err := l.logScores(); err != nil {
			return err
		}
		if err := l.visualizeReconstruction(batch); err != nil {
			return err
		}
		if err := l.visualizeTransfer(batch); err != nil {
			return err
		}
	}

	if iteration%l.config.CheckpointInterval == 0 {
		if err := l.SaveCheckpoint(); err != nil {
			return err
		}
	}

	return nil
}

// logScores flushes the buffered means as one formatted log line and
// resets the buffer.
func (l *Logger) logScores() error {
	means := l.buffer.means()
	names := l.buffer.names

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s - %.5f", name, means[i])
	}
	line := l.paddedIter() + ") " + strings.Join(parts, "; ")

	if _, err := fmt.Fprintln(l.logFile, line); err != nil {
		return fmt.Errorf("failed to write log line: %v", err)
	}
	if err := l.logFile.Sync(); err != nil {
		return fmt.Errorf("failed to flush log file: %v", err)
	}

	l.history.Record(l.iter, names, means)
	l.buffer.reset()
	return nil
}

// visualizeReconstruction runs an inference-only forward pass and writes
// the reconstruction grid as <iteration>-rec.gif.
func (l *Logger) visualizeReconstruction(batch *Batch) error {
	out, err := l.model.Forward(batch)
	if err != nil {
		return fmt.Errorf("reconstruction forward pass failed: %v", err)
	}

	frames, err := l.vis.VisualizeReconstruction(batch.Video, out.Prediction, out.Deformed)
	if err != nil {
		return fmt.Errorf("failed to render reconstruction: %v", err)
	}

	path := filepath.Join(l.config.LogDir, l.paddedIter()+"-rec.gif")
	return visualizer.SaveGIF(path, frames, gifFrameDelay)
}

// visualizeTransfer evaluates the model in transfer mode against the
// batch-reversed pairing and writes the grid as <iteration>-trans.gif.
func (l *Logger) visualizeTransfer(batch *Batch) error {
	transfer, err := batch.Transfer()
	if err != nil {
		return fmt.Errorf("failed to build transfer input: %v", err)
	}

	out, err := l.model.ForwardTransfer(transfer)
	if err != nil {
		return fmt.Errorf("transfer forward pass failed: %v", err)
	}

	frames, err := l.vis.VisualizeTransfer(transfer.Second, transfer.First, out.Prediction)
	if err != nil {
		return fmt.Errorf("failed to render transfer: %v", err)
	}

	path := filepath.Join(l.config.LogDir, l.paddedIter()+"-trans.gif")
	return visualizer.SaveGIF(path, frames, gifFrameDelay)
}

// SaveCheckpoint writes a checkpoint named by the current iteration.
// Older checkpoints are never deleted.
func (l *Logger) SaveCheckpoint() error {
	checkpoint := &checkpoints.Checkpoint{
		Model: l.model.StateDict(),
		Iter:  l.iter,
	}
	if l.optimizer != nil {
		checkpoint.Optimizer = l.optimizer.StateDict()
	}

	path := filepath.Join(l.config.LogDir, l.paddedIter()+"-checkpoint"+l.config.CheckpointFormat.Extension())
	if err := l.saver.SaveCheckpoint(checkpoint, path); err != nil {
		return fmt.Errorf("failed to save checkpoint: %v", err)
	}
	return nil
}

// Close saves a final checkpoint and closes the log file. Intended for
// defer so finalization runs even when the training loop fails mid-scope;
// it does not suppress the loop's own failure.
func (l *Logger) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true

	saveErr := l.SaveCheckpoint()
	closeErr := l.logFile.Close()

	if saveErr != nil {
		return saveErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close log file: %v", closeErr)
	}
	return nil
}

// paddedIter renders the current iteration zero-padded to the configured
// width.
func (l *Logger) paddedIter() string {
	return fmt.Sprintf("%0*d", l.config.PadWidth, l.iter)
}

// LoadCheckpoint restores model state (and optimizer state, when an
// optimizer is given) from a checkpoint file and returns the stored
// iteration, for resuming a run. The format is inferred from the file
// extension.
func LoadCheckpoint(path string, model Model, optimizer Optimizer) (int, error) {
	format, err := checkpoints.FormatForPath(path)
	if err != nil {
		return 0, err
	}

	checkpoint, err := checkpoints.NewCheckpointSaver(format).LoadCheckpoint(path)
	if err != nil {
		return 0, err
	}

	if err := model.LoadStateDict(checkpoint.Model); err != nil {
		return 0, fmt.Errorf("failed to restore model state: %v", err)
	}
	if optimizer != nil {
		if err := optimizer.LoadStateDict(checkpoint.Optimizer); err != nil {
			return 0, fmt.Errorf("failed to restore optimizer state: %v", err)
		}
	}

	return checkpoint.Iter, nil
}
