package value

// The As functions convert a number to one numeric kind. They report false
// when v is not a number or the conversion would change its value.

// AsLong returns v as a 64-bit integer.
func AsLong(v Value) (int64, bool) {
	if n, ok := v.(Long); ok {
		return int64(n), true
	}
	d, ok := Number(v)
	if !ok {
		return 0, false
	}
	n, err := d.Int64()
	return n, err == nil
}

// AsDecimal returns v as a decimal. NaN and infinite doubles have none.
func AsDecimal(v Value) (Decimal, bool) {
	switch n := v.(type) {
	case Decimal:
		return n, true
	case Long:
		return DecimalFromInt64(int64(n)), true
	case Double:
		d, err := DecimalFromFloat64(float64(n))
		return d, err == nil
	}
	return Decimal{}, false
}

// AsDouble returns v as a double if no digits are lost on the way.
func AsDouble(v Value) (float64, bool) {
	if f, ok := v.(Double); ok {
		return float64(f), true
	}
	d, ok := Number(v)
	if !ok {
		return 0, false
	}
	f, err := d.Float64()
	if err != nil {
		return 0, false
	}
	back, ok := Number(Double(f))
	return f, ok && back.Cmp(d) == 0
}
