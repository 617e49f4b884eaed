package config

type ServerCfg struct {
	MySql     MySql
	Redis     Redis
	Auth      Auth
	Detection Detection
	Email     Email
}

type MySql struct {
	Addr     string
	Database string
	User     string
	Password string
}

type Redis struct {
	Addr      string
	Databases struct {
		Token int
	}
	Password string
}

// Auth holds the HMAC secret shared with the external auth service.
// Tokens are issued there; this server only verifies them.
type Auth struct {
	Secret string
}

type Detection struct {
	ApiUrl    string
	StreamUrl string
}

type Email struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
}
