package config

// ApplyDefaults sets default values for any zero values in cfg.
// Topic and group names match the deployed broker configuration.
func ApplyDefaults(cfg *Config) {
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "0.0.0.0"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 3000
	}
	if cfg.Image.Host == "" {
		cfg.Image.Host = "0.0.0.0"
	}
	if cfg.Image.Port == 0 {
		cfg.Image.Port = 3001
	}
	if cfg.Text.Host == "" {
		cfg.Text.Host = "0.0.0.0"
	}
	if cfg.Text.Port == 0 {
		cfg.Text.Port = 3002
	}
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = "document-processor"
	}
	if cfg.Kafka.Topics.ImageProcessing == "" {
		cfg.Kafka.Topics.ImageProcessing = "document-image-processing"
	}
	if cfg.Kafka.Topics.TextProcessing == "" {
		cfg.Kafka.Topics.TextProcessing = "document-text-processing"
	}
	if cfg.Kafka.Topics.ProcessingResults == "" {
		cfg.Kafka.Topics.ProcessingResults = "document-processing-results"
	}
	if cfg.Kafka.Groups.Gateway == "" {
		cfg.Kafka.Groups.Gateway = "document-processing-group"
	}
	if cfg.Kafka.Groups.Image == "" {
		cfg.Kafka.Groups.Image = "image-service-group"
	}
	if cfg.Kafka.Groups.Text == "" {
		cfg.Kafka.Groups.Text = "text-service-group"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "data/documents.db"
	}
}
