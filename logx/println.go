//go:build rp2040 || rp2350

package logx

type console struct{ min Level }

// Console prints records at or above min on the default serial console.
func Console(min Level) Logger { return console{min: min} }

func (c console) Log(level Level, msg string, fields ...Field) {
	if level < c.min {
		return
	}
	print("[", level.String(), "] ", msg)
	for _, f := range fields {
		print(" ", f.Key, "=")
		printValue(f.Value)
	}
	println()
}

func printValue(v any) {
	switch x := v.(type) {
	case string:
		print(x)
	case bool:
		print(x)
	case int:
		print(x)
	case int32:
		print(x)
	case uint8:
		print(x)
	case uint16:
		print(x)
	case uint32:
		print(x)
	case uint64:
		print(x)
	case float32:
		print(x)
	case float64:
		print(x)
	case error:
		print(x.Error())
	case interface{ String() string }:
		print(x.String())
	default:
		print("?")
	}
}
