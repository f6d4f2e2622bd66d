package serverconfig

import "time"

type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Battle    BattleConfig    `yaml:"battle" mapstructure:"battle"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	MongoDB   MongoDBConfig   `yaml:"mongodb" mapstructure:"mongodb"`
	MySQL     MySQLConfig     `yaml:"mysql" mapstructure:"mysql"`
	OpsServer OpsServerConfig `yaml:"opsserver" mapstructure:"opsserver"`
	Logic     LogicConfig     `yaml:"logic" mapstructure:"logic"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

// BattleConfig 是回合结算的可调参数，0 值表示使用引擎默认值。
type BattleConfig struct {
	GoldCap         int           `yaml:"gold_cap" mapstructure:"gold_cap"`
	BaseIncome      int           `yaml:"base_income" mapstructure:"base_income"`
	DestroyBonus    int           `yaml:"destroy_bonus" mapstructure:"destroy_bonus"`
	ConfusionRefund int           `yaml:"confusion_refund" mapstructure:"confusion_refund"`
	DisguisePenalty int           `yaml:"disguise_penalty" mapstructure:"disguise_penalty"`
	BarrierRegen    int           `yaml:"barrier_regen" mapstructure:"barrier_regen"`
	HpCap           int           `yaml:"hp_cap" mapstructure:"hp_cap"`
	MirageBlockRate float64       `yaml:"mirage_block_rate" mapstructure:"mirage_block_rate"`
	ChainRate       float64       `yaml:"chain_rate" mapstructure:"chain_rate"`
	Seed            int64         `yaml:"seed" mapstructure:"seed"`
	AskTimeout      time.Duration `yaml:"ask_timeout" mapstructure:"ask_timeout"`
}

type StorageConfig struct {
	Driver       string        `yaml:"driver" mapstructure:"driver"` // memory/mongodb/mysql
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
	ShowSQL  bool   `yaml:"show_sql" mapstructure:"show_sql"`
}

type OpsServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type LogicConfig struct {
	CityData string `yaml:"city_data" mapstructure:"city_data"` // 城市目录 json，缺省用内置数据
	Snapshot string `yaml:"snapshot" mapstructure:"snapshot"`
}
