package fluid

import (
	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/pipeline"
	"github.com/gogpu/fluid/internal/shaders"
)

// Each pass program carries its uniform locations, resolved once at link
// time.

type advectionProgram struct {
	*pipeline.Program
	dissipation  gpucore.UniformLocation
	deltaTime    gpucore.UniformLocation
	resolution   gpucore.UniformLocation
	velocity     gpucore.UniformLocation
	quantity     gpucore.UniformLocation
	quantitySize gpucore.UniformLocation
	obstacles    gpucore.UniformLocation
}

type curlProgram struct {
	*pipeline.Program
	rHalfTexelSize gpucore.UniformLocation
	resolution     gpucore.UniformLocation
	velocity       gpucore.UniformLocation
}

type vorticityProgram struct {
	*pipeline.Program
	curlScale      gpucore.UniformLocation
	rHalfTexelSize gpucore.UniformLocation
	resolution     gpucore.UniformLocation
	curl           gpucore.UniformLocation
	velocity       gpucore.UniformLocation
}

type divergenceProgram struct {
	*pipeline.Program
	rHalfTexelSize gpucore.UniformLocation
	resolution     gpucore.UniformLocation
	velocity       gpucore.UniformLocation
	obstacles      gpucore.UniformLocation
}

type jacobiProgram struct {
	*pipeline.Program
	alpha      gpucore.UniformLocation
	rBeta      gpucore.UniformLocation
	resolution gpucore.UniformLocation
	x          gpucore.UniformLocation
	b          gpucore.UniformLocation
	obstacles  gpucore.UniformLocation
}

type gradientSubtractProgram struct {
	*pipeline.Program
	rHalfTexelSize gpucore.UniformLocation
	resolution     gpucore.UniformLocation
	velocity       gpucore.UniformLocation
	pressure       gpucore.UniformLocation
	obstacles      gpucore.UniformLocation
}

type splatProgram struct {
	*pipeline.Program
	scaledRadius gpucore.UniformLocation
	position     gpucore.UniformLocation
	color        gpucore.UniformLocation
	texture      gpucore.UniformLocation
}

type obstacleProgram struct {
	*pipeline.Program
	scaledRadiusSquared gpucore.UniformLocation
	position            gpucore.UniformLocation
	isCircle            gpucore.UniformLocation
}

type obstacleColoringProgram struct {
	*pipeline.Program
	color     gpucore.UniformLocation
	texture   gpucore.UniformLocation
	obstacles gpucore.UniformLocation
}

// programs is the full program set of a simulator. The obstacle programs
// are nil when obstacles are disabled.
type programs struct {
	advection        *advectionProgram
	copy             *pipeline.CopyProgram
	curl             *curlProgram
	vorticity        *vorticityProgram
	divergence       *divergenceProgram
	jacobi           *jacobiProgram
	gradientSubtract *gradientSubtractProgram
	splat            *splatProgram
	obstacle         *obstacleProgram
	obstacleColoring *obstacleColoringProgram

	all []*pipeline.Program
}

// compilePrograms compiles every pass for the negotiated configuration.
// On failure the programs compiled so far are destroyed.
func compilePrograms(dev gpucore.Device, cfg gpucore.Config, obstacles bool) (*programs, error) {
	var defines []string
	if obstacles {
		defines = append(defines, shaders.DefineObstacles)
	}
	if cfg.ManualFiltering {
		defines = append(defines, shaders.DefineManualFiltering)
	}

	ps := &programs{}
	compile := func(pass shaders.Pass) (*pipeline.Program, error) {
		vs, fs, err := shaders.Source(cfg.Dialect, pass, defines...)
		if err != nil {
			return nil, &gpucore.ShaderCompileError{Label: string(pass), Stage: gpucore.StageFragment, Log: err.Error()}
		}
		p, err := pipeline.Compile(dev, gpucore.ProgramDescriptor{Label: string(pass), Vertex: vs, Fragment: fs})
		if err != nil {
			return nil, err
		}
		ps.all = append(ps.all, p)
		return p, nil
	}

	passes := []shaders.Pass{
		shaders.Advection, shaders.Copy, shaders.Curl, shaders.Vorticity,
		shaders.Divergence, shaders.Jacobi, shaders.GradientSubtract, shaders.Splat,
	}
	if obstacles {
		passes = append(passes, shaders.Obstacle, shaders.ObstacleColoring)
	}
	for _, pass := range passes {
		p, err := compile(pass)
		if err != nil {
			ps.destroy()
			return nil, err
		}
		ps.install(pass, p)
	}
	return ps, nil
}

func (ps *programs) install(pass shaders.Pass, p *pipeline.Program) {
	switch pass {
	case shaders.Advection:
		ps.advection = &advectionProgram{
			Program:      p,
			dissipation:  p.Uniform(shaders.UDissipation),
			deltaTime:    p.Uniform(shaders.UDeltaTime),
			resolution:   p.Uniform(shaders.UResolution),
			velocity:     p.Uniform(shaders.UVelocity),
			quantity:     p.Uniform(shaders.UQuantity),
			quantitySize: p.Uniform(shaders.UQuantitySize),
			obstacles:    p.Uniform(shaders.UObstacles),
		}
	case shaders.Copy:
		ps.copy = pipeline.NewCopyProgram(p)
	case shaders.Curl:
		ps.curl = &curlProgram{
			Program:        p,
			rHalfTexelSize: p.Uniform(shaders.URHalfTexelSize),
			resolution:     p.Uniform(shaders.UResolution),
			velocity:       p.Uniform(shaders.UVelocity),
		}
	case shaders.Vorticity:
		ps.vorticity = &vorticityProgram{
			Program:        p,
			curlScale:      p.Uniform(shaders.UCurlScale),
			rHalfTexelSize: p.Uniform(shaders.URHalfTexelSize),
			resolution:     p.Uniform(shaders.UResolution),
			curl:           p.Uniform(shaders.UCurl),
			velocity:       p.Uniform(shaders.UVelocity),
		}
	case shaders.Divergence:
		ps.divergence = &divergenceProgram{
			Program:        p,
			rHalfTexelSize: p.Uniform(shaders.URHalfTexelSize),
			resolution:     p.Uniform(shaders.UResolution),
			velocity:       p.Uniform(shaders.UVelocity),
			obstacles:      p.Uniform(shaders.UObstacles),
		}
	case shaders.Jacobi:
		ps.jacobi = &jacobiProgram{
			Program:    p,
			alpha:      p.Uniform(shaders.UAlpha),
			rBeta:      p.Uniform(shaders.URBeta),
			resolution: p.Uniform(shaders.UResolution),
			x:          p.Uniform(shaders.UX),
			b:          p.Uniform(shaders.UB),
			obstacles:  p.Uniform(shaders.UObstacles),
		}
	case shaders.GradientSubtract:
		ps.gradientSubtract = &gradientSubtractProgram{
			Program:        p,
			rHalfTexelSize: p.Uniform(shaders.URHalfTexelSize),
			resolution:     p.Uniform(shaders.UResolution),
			velocity:       p.Uniform(shaders.UVelocity),
			pressure:       p.Uniform(shaders.UPressure),
			obstacles:      p.Uniform(shaders.UObstacles),
		}
	case shaders.Splat:
		ps.splat = &splatProgram{
			Program:      p,
			scaledRadius: p.Uniform(shaders.UScaledRadius),
			position:     p.Uniform(shaders.UPosition),
			color:        p.Uniform(shaders.UColor),
			texture:      p.Uniform(shaders.UTexture),
		}
	case shaders.Obstacle:
		ps.obstacle = &obstacleProgram{
			Program:             p,
			scaledRadiusSquared: p.Uniform(shaders.UScaledRadiusSquared),
			position:            p.Uniform(shaders.UPosition),
			isCircle:            p.Uniform(shaders.UIsCircle),
		}
	case shaders.ObstacleColoring:
		ps.obstacleColoring = &obstacleColoringProgram{
			Program:   p,
			color:     p.Uniform(shaders.UColor),
			texture:   p.Uniform(shaders.UTexture),
			obstacles: p.Uniform(shaders.UObstacles),
		}
	}
}

// destroy releases the programs in reverse creation order.
func (ps *programs) destroy() {
	for i := len(ps.all) - 1; i >= 0; i-- {
		ps.all[i].Destroy()
	}
	ps.all = nil
}
