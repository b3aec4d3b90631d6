package scenefile

var builtins = map[string]string{
	"all-effects": `
name: all effects
colorScale: 255
background: [0, 0, 0]
ambient: {intensity: [0, 0, 0], ka: 0}
camera: {position: [0, 0, -1000], to: [0, 0, 1], up: [0, -1, 0]}
distance: 1000
view: {width: 150, height: 150, imageWidth: 500, imageHeight: 500}
geometries:
  - sphere: {center: [0, 0, 60], radius: 50}
    emission: [0, 0, 255]
    material: {kd: 0.4, ks: 0.3, shininess: 100, kr: 0.3}
  - sphere: {center: [0, -40, 60], radius: 25}
    emission: [255, 255, 0]
    material: {kd: 0.5, ks: 0.5, shininess: 100, kt: 0.8}
  - triangle:
      vertices: [[-80, -60, 150], [60, 40, 20], [70, 20, 150]]
    emission: [255, 175, 175]
    material: {kr: 0.3, kt: 0.7}
lights:
  - spot:
      intensity: [1000, 600, 0]
      position: [-100, 100, -500]
      direction: [-1, 1, 2]
      kc: 1
      kl: 0.0004
      kq: 0.0000006
`,

	"mirrors": `
name: mirrors
colorScale: 255
background: [10, 10, 30]
ambient: {intensity: [255, 255, 255], ka: 0.05}
camera: {position: [0, 50, 1000], lookAt: [0, 0, -200], up: [0, 1, 0]}
distance: 800
view: {width: 200, height: 150, imageWidth: 640, imageHeight: 480}
geometries:
  - plane: {point: [0, -100, 0], normal: [0, 1, 0]}
    emission: [20, 20, 20]
    material: {kd: 0.6, ks: 0.2, shininess: 20, kr: 0.2}
  - plane: {point: [-250, 0, 0], normal: [1, 0, 0]}
    material: {kd: 0.05, kr: 0.9}
  - plane: {point: [250, 0, 0], normal: [-1, 0, 0]}
    material: {kd: 0.05, kr: 0.9}
  - sphere: {center: [0, -30, -200], radius: 70}
    emission: [120, 20, 20]
    material: {kd: 0.5, ks: 0.5, shininess: 60, kr: 0.1}
  - sphere: {center: [110, -70, -80], radius: 30}
    emission: [20, 40, 120]
    material: {kd: 0.3, ks: 0.6, shininess: 120, kt: 0.6}
  - polygon:
      vertices: [[-120, -100, -450], [120, -100, -450], [160, 60, -450], [0, 160, -450], [-160, 60, -450]]
    emission: [30, 90, 40]
    material: {kd: 0.7, ks: 0.1, shininess: 10}
lights:
  - point: {intensity: [255, 240, 220], position: [0, 300, 200], kc: 1, kl: 0.0005, kq: 0.000001}
  - directional: {intensity: [60, 60, 80], direction: [1, -1, -1]}
`,
}
