// Package publish writes switch state deltas to a Redis database as
// "TABLE|key" hashes, the layout SONiC-style consumers read.
package publish

import (
	"encoding"
	"encoding/json"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/newtron-network/swreconcile/pkg/state"
)

// Tables maps each state domain to the Redis table it is published in.
var Tables = map[string]string{
	"switchSettings":   "SWITCH",
	"controlPlane":     "CONTROL_PLANE",
	"ports":            "PORT",
	"aggregatePorts":   "PORTCHANNEL",
	"mirrors":          "MIRROR_SESSION",
	"acls":             "ACL_RULE",
	"qosPolicies":      "QOS_POLICY",
	"defaultQosPolicy": "DEFAULT_QOS_POLICY",
	"interfaces":       "INTERFACE",
	"vlans":            "VLAN",
	"routes":           "ROUTE_TABLE",
	"fibs":             "FIB_TABLE",
	"scalars":          "SWITCH_SCALARS",
	"sflowCollectors":  "SFLOW_COLLECTOR",
	"loadBalancers":    "LOAD_BALANCER",
}

// Domains whose single entry is published under GlobalKey.
var singletons = map[string]bool{
	"switchSettings":   true,
	"controlPlane":     true,
	"defaultQosPolicy": true,
	"scalars":          true,
}

// GlobalKey is the key of single-entry tables.
const GlobalKey = "global"

// OpKind is what an Op does to its key.
type OpKind int

const (
	// OpSet replaces the whole hash.
	OpSet OpKind = iota
	// OpDel removes the hash.
	OpDel
)

func (k OpKind) String() string {
	if k == OpDel {
		return "DEL"
	}
	return "SET"
}

// Op is one Redis write.
type Op struct {
	Kind   OpKind
	Key    string
	Fields map[string]string
}

// RedisKey joins a table and an entry key with the CONFIG_DB separator.
func RedisKey(table, key string) string {
	return table + "|" + key
}

// Ops renders delta entries as Redis writes, in entry order.
func Ops(entries []state.Entry) ([]Op, error) {
	ops := make([]Op, 0, len(entries))
	for _, e := range entries {
		table, ok := Tables[e.Domain]
		if !ok {
			return nil, fmt.Errorf("no table for domain %q", e.Domain)
		}
		key := e.Key
		if singletons[e.Domain] {
			key = GlobalKey
		}
		if e.Kind == state.Removed {
			ops = append(ops, Op{Kind: OpDel, Key: RedisKey(table, key)})
			continue
		}
		fields, err := HashFields(e.New)
		if err != nil {
			return nil, fmt.Errorf("rendering %s %s: %w", e.Domain, e.Key, err)
		}
		ops = append(ops, Op{Kind: OpSet, Key: RedisKey(table, key), Fields: fields})
	}
	return ops, nil
}

var (
	textMarshaler = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	hardwareAddr  = reflect.TypeOf(net.HardwareAddr(nil))
	duration      = reflect.TypeOf(time.Duration(0))
	stringSlice   = reflect.TypeOf([]string(nil))
)

// HashFields flattens the exported top-level fields of a struct into hash
// fields named in snake_case. Zero values are left out; an empty hash gets
// the "NULL":"NULL" sentinel so that the key still exists. Maps and nested
// structs are JSON encoded.
func HashFields(v any) (map[string]string, error) {
	fields := map[string]string{}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil value")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot render %s as a hash", rv.Type())
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if fv.IsZero() {
			continue
		}
		s, err := fieldValue(fv)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		fields[snakeCase(sf.Name)] = s
	}
	if len(fields) == 0 {
		fields["NULL"] = "NULL"
	}
	return fields, nil
}

func fieldValue(v reflect.Value) (string, error) {
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	switch v.Type() {
	case hardwareAddr:
		return v.Interface().(net.HardwareAddr).String(), nil
	case duration:
		return v.Interface().(time.Duration).String(), nil
	}
	if v.Type().Implements(textMarshaler) {
		b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		return string(b), err
	}
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Slice:
		if v.Type() == stringSlice {
			return strings.Join(v.Interface().([]string), ","), nil
		}
	}
	b, err := json.Marshal(v.Interface())
	return string(b), err
}

// snakeCase turns "DhcpV4RelayOverrides" into "dhcp_v4_relay_overrides"
// and "MTU" into "mtu".
func snakeCase(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sb.WriteByte('_')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
