package integrations

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Registration is the outcome of probing the candidate integrations.
type Registration struct {
	Registered   []string     `json:"registered"`
	Skipped      []string     `json:"skipped"`
	Capabilities []Capability `json:"capabilities"`

	// Registry holds the actions of registered integrations only.
	Registry *Registry `json:"-"`

	mounted []Integration
}

// Register probes every candidate's native dependencies. Integrations whose
// probes all pass are registered and contribute capabilities and actions;
// the rest are skipped. Routes are mounted separately with Mount, once the
// approval service has been built from Registry.
func Register(ctx context.Context, candidates []Integration, log *zap.Logger) *Registration {
	reg := &Registration{
		Registered:   []string{},
		Skipped:      []string{},
		Capabilities: []Capability{},
	}

	for _, in := range candidates {
		name := in.Manifest.Name
		if dep, ok := checkDeps(ctx, in.Manifest.NativeDeps); !ok {
			log.Warn("skipping integration, native dependency not met",
				zap.String("integration", name),
				zap.String("dependency", dep),
			)
			reg.Skipped = append(reg.Skipped, name)
			continue
		}

		reg.mounted = append(reg.mounted, in)
		reg.Registered = append(reg.Registered, name)
		reg.Capabilities = append(reg.Capabilities, in.Manifest.Capabilities...)
	}

	reg.Registry = NewRegistry(reg.mounted...)

	log.Info("integrations registered",
		zap.Strings("registered", reg.Registered),
		zap.Strings("skipped", reg.Skipped),
		zap.Int("actions", reg.Registry.Len()),
	)
	return reg
}

// Mount mounts each registered integration under /<name>, behind handlers.
func (r *Registration) Mount(router fiber.Router, opts MountOptions, handlers ...fiber.Handler) {
	for _, in := range r.mounted {
		if in.Mount == nil {
			continue
		}
		in.Mount(router.Group("/"+in.Manifest.Name, handlers...), opts)
	}
}

// checkDeps runs probes in order and stops at the first failure, returning its name.
func checkDeps(ctx context.Context, deps []NativeDep) (string, bool) {
	for _, dep := range deps {
		if dep.Check == nil || !dep.Check(ctx) {
			return dep.Name, false
		}
	}
	return "", true
}
