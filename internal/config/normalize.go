package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Feed.URL = strings.TrimSpace(c.Feed.URL)
	c.Training.BaseModelRef = strings.TrimSpace(c.Training.BaseModelRef)
	c.Training.TrainerBinary = strings.TrimSpace(c.Training.TrainerBinary)
	c.Classifier.MLBinary = strings.TrimSpace(c.Classifier.MLBinary)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}
