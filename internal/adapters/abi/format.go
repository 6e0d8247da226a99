package abi

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FormatValue renders a decoded ABI value for display
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case common.Address:
		return v.Hex()
	case *big.Int:
		if v == nil {
			return "0"
		}
		return v.String()
	case []byte:
		if len(v) == 0 {
			return "0x"
		}
		if len(v) <= 32 {
			return hexutil.Encode(v)
		}
		return fmt.Sprintf("%s...(%d bytes)", hexutil.Encode(v[:16]), len(v))
	case [32]byte:
		return hexutil.Encode(v[:])
	case common.Hash:
		return v.Hex()
	case string:
		if len(v) > 50 {
			return fmt.Sprintf("%.50s...(%d chars)", v, len(v))
		}
		return fmt.Sprintf("%q", v)
	case bool:
		return fmt.Sprintf("%t", v)
	case uint8, uint16, uint32, uint64, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	default:
		if data, err := json.Marshal(v); err == nil {
			s := string(data)
			if len(s) > 100 {
				return fmt.Sprintf("%.100s...(%d chars)", s, len(s))
			}
			return s
		}
		return fmt.Sprintf("%v", v)
	}
}
