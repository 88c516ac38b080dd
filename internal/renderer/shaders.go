package renderer

// TilemapShader renders the viewport plane. The fragment stage resolves the
// current tile from the interpolated bufPos shifted by the scroll offsets,
// reads its record out of the fixed-capacity uniform array (4096 entries,
// matching tilemap.MaxPlaneRecords), and samples the corresponding
// tile-sheet region.
//
// All vector uniform fields are padded to vec4: uniform array strides and
// vec2 alignment rules make smaller fields a layout hazard.
//
// world_size = (view tiles w, view tiles h, tile px, _)
// sheet_size = (sheet columns, sheet rows, _, _)
// offsets    = (scroll x px, scroll y px, _, _)
const TilemapShader = `
struct Uniforms {
    model: mat4x4<f32>,
    view: mat4x4<f32>,
    proj: mat4x4<f32>,
    world_size: vec4<f32>,
    sheet_size: vec4<f32>,
    offsets: vec4<f32>,
}

struct TileRecords {
    data: array<vec4<f32>, 4096>,
}

@group(0) @binding(0) var<uniform> u: Uniforms;
@group(0) @binding(1) var<uniform> records: TileRecords;
@group(0) @binding(2) var sheet_sampler: sampler;
@group(0) @binding(3) var sheet_texture: texture_2d<f32>;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) buf_pos: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) buf_pos: vec2<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = u.proj * u.view * u.model * vec4<f32>(in.position, 1.0);
    out.buf_pos = in.buf_pos;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let scrolled = in.buf_pos + (u.offsets.xy / u.world_size.z);
    let tile = floor(scrolled);
    let within = vec2<f32>(scrolled.x - tile.x, 1.0 - (scrolled.y - tile.y));
    let idx = clamp(i32(tile.y * u.world_size.x + tile.x), 0, 4095);
    let entry = records.data[idx];
    let uv = (entry.xy + within) / u.sheet_size.xy;
    return textureSample(sheet_texture, sheet_sampler, uv);
}
`
