package params

import (
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/joho/godotenv"
)

// Genesis holds the values seeded into the ledger on first boot.
// Mirrors the contract install arguments: token metadata, initial supply,
// and the deployer who becomes admin and receives the full supply.
type Genesis struct {
	TokenName   string
	TokenSymbol string
	Decimals    uint8
	TotalSupply *uint256.Int
	Deployer    common.Address
	MaxLeverage uint32
	// Ratio is the liquid-staking conversion factor, fixed-point scale
	// 1,000,000. The default 1,000,000 means 1:1.
	Ratio *uint256.Int
}

type Node struct {
	DataDir    string
	ListenAddr string
	LogFile    string
}

type Config struct {
	Genesis Genesis
	Node    Node
}

func Default() Config {
	return Config{
		Genesis: Genesis{
			TokenName:   "CasperFlow",
			TokenSymbol: "CFLOW",
			Decimals:    9,
			TotalSupply: uint256.NewInt(1_000_000_000_000_000), // 1M tokens at 9 decimals
			Deployer:    common.HexToAddress("0x0000000000000000000000000000000000000001"),
			MaxLeverage: 100,
			Ratio:       uint256.NewInt(1_000_000),
		},
		Node: Node{
			DataDir:    "data",
			ListenAddr: ":8080",
			LogFile:    "data/node.log",
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("TOKEN_NAME"); v != "" {
		cfg.Genesis.TokenName = v
	}
	if v := os.Getenv("TOKEN_SYMBOL"); v != "" {
		cfg.Genesis.TokenSymbol = v
	}
	if v := os.Getenv("TOKEN_SUPPLY"); v != "" {
		if supply, err := uint256.FromDecimal(v); err == nil {
			cfg.Genesis.TotalSupply = supply
		}
	}
	if v := os.Getenv("DEPLOYER"); v != "" && common.IsHexAddress(v) {
		cfg.Genesis.Deployer = common.HexToAddress(v)
	}
	if v := os.Getenv("MAX_LEVERAGE"); v != "" {
		if lev, err := strconv.ParseUint(v, 10, 32); err == nil && lev > 0 {
			cfg.Genesis.MaxLeverage = uint32(lev)
		}
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Node.DataDir = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Node.ListenAddr = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Node.LogFile = v
	}

	return cfg
}
