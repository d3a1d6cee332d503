package config

const (
	defaultDataDir              = "~/.local/share/periksa/data"
	defaultLogDir               = "~/.local/share/periksa/logs"
	defaultAPIBind              = "127.0.0.1:7823"
	defaultFeedPollMinutes      = 60
	defaultFetchTimeoutSeconds  = 10
	defaultMaxConcurrentFetches = 4
	defaultTrainingThreshold    = 50
	defaultCheckIntervalHours   = 6
	defaultBaseModelRef         = "indobenchmark/indobert-base-p1"
	defaultTrainerBinary        = "periksa-trainer"
	defaultTrainTimeoutMinutes  = 120
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Feed: Feed{
			PollIntervalMinutes:  defaultFeedPollMinutes,
			FetchTimeoutSeconds:  defaultFetchTimeoutSeconds,
			MaxConcurrentFetches: defaultMaxConcurrentFetches,
		},
		Training: Training{
			Threshold:           defaultTrainingThreshold,
			CheckIntervalHours:  defaultCheckIntervalHours,
			BaseModelRef:        defaultBaseModelRef,
			TrainerBinary:       defaultTrainerBinary,
			TrainTimeoutMinutes: defaultTrainTimeoutMinutes,
		},
		Classifier: Classifier{
			MLEnabled: false,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
