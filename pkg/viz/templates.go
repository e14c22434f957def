package viz

import "html/template"

var templates = map[string]*template.Template{
	"2d": template.Must(template.New("2d").Parse(template2D)),
	"3d": template.Must(template.New("3d").Parse(template3D)),
}

const template2D = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Knowledge Graph</title>
<script src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
<style>
  body { margin: 0; background-color: #222222; }
  #graph { width: 100%; height: 700px; }
</style>
</head>
<body>
<div id="graph"></div>
<script>
  const data = {{.Data}};
  const nodes = new vis.DataSet(data.nodes.map(function (n) {
    return { id: n.id, label: n.name, title: n.group, color: n.color, font: { color: "white" } };
  }));
  const edges = new vis.DataSet(data.links.map(function (l) {
    return { from: l.source, to: l.target, color: "#555555" };
  }));
  new vis.Network(document.getElementById("graph"), { nodes: nodes, edges: edges }, {
    physics: { solver: "forceAtlas2Based" }
  });
</script>
</body>
</html>
`

const template3D = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Knowledge Graph</title>
<script src="https://unpkg.com/3d-force-graph"></script>
<style>
  body { margin: 0; background-color: rgb(10, 10, 10); }
</style>
</head>
<body>
<div id="graph"></div>
<script>
  const data = {{.Data}};
  ForceGraph3D()(document.getElementById("graph"))
    .graphData(data)
    .nodeLabel("name")
    .nodeColor(function (n) { return n.color; })
    .nodeOpacity(0.9)
    .linkColor(function () { return "rgba(100, 200, 255, 0.3)"; })
    .backgroundColor("rgb(10, 10, 10)");
</script>
</body>
</html>
`
