package g2d

import (
	"github.com/gogpu/g2d/particles"
)

// ParticleGroup is a particle system drawn on a layer. Particles are
// emitted in world coordinates and advanced by Scene.Update.
type ParticleGroup struct {
	*particles.Group
	rec   record[particleEntry]
	image string
}

// AddParticleGroup adds an empty particle group. Particles are textured
// with the named atlas image, or drawn as solid squares when image is "".
func (l *Layer) AddParticleGroup(image string, p particles.Params) (*ParticleGroup, error) {
	g, err := particles.New(p)
	if err != nil {
		return nil, err
	}
	e := particleEntry{group: g}
	if image != "" {
		ent, err := l.scene.atlas.Get(image)
		if err != nil {
			return nil, err
		}
		e.uv, e.textured = ent.UV, true
	}
	pg := &ParticleGroup{Group: g, image: image}
	pg.rec = newRecord(l.particleBatch())
	pg.rec.write(e)
	return pg, nil
}

// Image returns the particle image name, or "" for solid particles.
func (pg *ParticleGroup) Image() string { return pg.image }

// Delete removes the group and all of its particles.
func (pg *ParticleGroup) Delete() error {
	if err := pg.rec.free(); err != nil {
		return err
	}
	pg.Clear()
	return nil
}
