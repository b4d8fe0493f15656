package property

// Config describes one managed apartment, loaded from a YAML file in
// the properties directory. The file name (without .yml) becomes the
// config name used to match the database row across restarts.
type Config struct {
	Name string `yaml:"-"` // derived from filename

	DisplayName  string       `yaml:"name"`
	Address      string       `yaml:"address"`
	Beds         int          `yaml:"beds"`
	MaxGuests    int          `yaml:"max_guests"`
	Description  string       `yaml:"description"`
	CheckInTime  string       `yaml:"check_in_time"`
	CheckOutTime string       `yaml:"check_out_time"`
	CleaningFee  *float64     `yaml:"cleaning_fee"`
	DailyRental  bool         `yaml:"daily_rental"`
	Active       bool         `yaml:"active"`
	Feeds        []ConfigFeed `yaml:"feeds"`
}

// ConfigFeed is one external calendar subscription. Source is the
// explicit provider tag; when omitted it is inferred from the URL once
// at load time and stored, never re-derived during sync.
type ConfigFeed struct {
	Source  string `yaml:"source"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}
