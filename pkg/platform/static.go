package platform

import (
	"fmt"
	"hash/fnv"
	"net"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// Defaults of a platform file.
const (
	DefaultQueuesPerPort = 8
	DefaultCPUQueues     = 10
	DefaultNameFormat    = "eth%d"
)

// PortGroup describes a run of identical ports.
type PortGroup struct {
	IDs        string            `yaml:"ids"`
	NameFormat string            `yaml:"nameFormat,omitempty"`
	Speed      config.PortSpeed  `yaml:"speed,omitempty"`
	ProfileID  string            `yaml:"profileID,omitempty"`
	Queues     int               `yaml:"queues,omitempty"`
	StreamType config.StreamType `yaml:"streamType,omitempty"`
}

// File is the on-disk platform description.
type File struct {
	Name              string                           `yaml:"name"`
	LocalMAC          string                           `yaml:"localMac"`
	CPUQueues         int                              `yaml:"cpuQueues,omitempty"`
	PortGroups        []PortGroup                      `yaml:"ports"`
	LoadBalancerSeeds map[config.LoadBalancerID]uint32 `yaml:"loadBalancerSeeds,omitempty"`
}

// Static is a Platform read from a file.
type Static struct {
	name      string
	mac       net.HardwareAddr
	ports     []PortSpec
	cpuQueues int
	seeds     map[config.LoadBalancerID]uint32
}

// Load reads a platform description from path.
func Load(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading platform file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading platform %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML platform description.
func Parse(data []byte) (*Static, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing platform: %w", err)
	}
	return New(f)
}

// New builds a platform from its description.
func New(f File) (*Static, error) {
	mac, err := util.ParseMAC(f.LocalMAC)
	if err != nil {
		return nil, fmt.Errorf("platform %s: %w", f.Name, err)
	}
	s := &Static{
		name:      f.Name,
		mac:       mac,
		cpuQueues: f.CPUQueues,
		seeds:     f.LoadBalancerSeeds,
	}
	if s.cpuQueues == 0 {
		s.cpuQueues = DefaultCPUQueues
	}

	seen := map[int]bool{}
	for _, g := range f.PortGroups {
		ids, err := util.ExpandRange(g.IDs)
		if err != nil {
			return nil, fmt.Errorf("platform %s: port ids %q: %w", f.Name, g.IDs, err)
		}
		format := g.NameFormat
		if format == "" {
			format = DefaultNameFormat
		}
		queues := g.Queues
		if queues == 0 {
			queues = DefaultQueuesPerPort
		}
		for _, id := range ids {
			if seen[id] {
				return nil, util.NewDuplicateError("platform port", id)
			}
			seen[id] = true
			s.ports = append(s.ports, PortSpec{
				ID:         id,
				Name:       fmt.Sprintf(format, id),
				Speed:      g.Speed,
				ProfileID:  g.ProfileID,
				Queues:     queues,
				StreamType: g.StreamType,
			})
		}
	}
	slices.SortFunc(s.ports, func(a, b PortSpec) int { return a.ID - b.ID })
	return s, nil
}

func (s *Static) Name() string               { return s.name }
func (s *Static) LocalMAC() net.HardwareAddr { return s.mac }
func (s *Static) Ports() []PortSpec          { return slices.Clone(s.ports) }
func (s *Static) CPUQueues() int             { return s.cpuQueues }

// LoadBalancerSeed returns the configured seed, or one derived from the
// local MAC so that every switch hashes differently.
func (s *Static) LoadBalancerSeed(id config.LoadBalancerID) uint32 {
	if seed, ok := s.seeds[id]; ok {
		return seed
	}
	h := fnv.New32a()
	h.Write(s.mac)
	h.Write([]byte(id))
	return h.Sum32()
}
