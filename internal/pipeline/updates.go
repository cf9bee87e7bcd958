package pipeline

// ProgressUpdate reports scan progress to a listener such as the TUI or
// the web page. Percent is cosmetic pacing for display, not a measurement.
type ProgressUpdate struct {
	State   State
	Percent int
	Message string
	Data    any
}

func uploadUpdate(name string) ProgressUpdate {
	return ProgressUpdate{State: StateUploading, Percent: 10, Message: "Uploading " + name + "..."}
}

func fingerprintUpdate() ProgressUpdate {
	return ProgressUpdate{State: StateRecognizing, Percent: 20, Message: "Processing audio fingerprint..."}
}

func frequencyUpdate() ProgressUpdate {
	return ProgressUpdate{State: StateRecognizing, Percent: 40, Message: "Analyzing frequency patterns..."}
}

func matchingUpdate() ProgressUpdate {
	return ProgressUpdate{State: StateRecognizing, Percent: 60, Message: "Matching with database..."}
}

func identifyUpdate(title, artist string) ProgressUpdate {
	return ProgressUpdate{
		State:   StateResolving,
		Percent: 80,
		Message: "Identifying track...",
		Data:    map[string]string{"title": title, "artist": artist},
	}
}

func finalizeUpdate() ProgressUpdate {
	return ProgressUpdate{State: StateResolving, Percent: 95, Message: "Finalizing results..."}
}

func doneUpdate(state State, msg string, data any) ProgressUpdate {
	return ProgressUpdate{State: state, Percent: 100, Message: msg, Data: data}
}
