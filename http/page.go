package http

import "net/http"

func handleCalculatorPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(calculatorPage))
}

// calculatorPage 单页计算器，替代原来的 Streamlit 页面
const calculatorPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>RAO Risk Calculator</title>
<style>
body { font-family: sans-serif; max-width: 760px; margin: 24px auto; padding: 0 16px; color: #222; }
h1 { font-size: 1.4em; }
fieldset { border: 1px solid #ccc; border-radius: 6px; margin-bottom: 12px; }
label { display: block; margin: 8px 0 2px; }
input, select { width: 220px; padding: 4px; }
button { padding: 8px 18px; margin-right: 8px; cursor: pointer; }
#result { white-space: pre-wrap; border-left: 4px solid #888; padding: 8px 12px; margin-top: 16px; background: #f7f7f7; }
small { color: #666; }
</style>
</head>
<body>
<h1>🌡 Radial Artery Occlusion (RAO) Risk Calculator</h1>
<p><em>Machine learning-based prediction of radial artery occlusion risk following transradial procedures.</em></p>
<fieldset>
<legend>Clinical Parameters</legend>
<label>Compression Time (minutes) <input type="number" id="compression_time" step="5"></label>
<label>Intraoperative Nitroglycerin Dose (μg) <input type="number" id="nitroglycerin_dose" step="50"></label>
<label>Pre-procedural Radial Artery Diameter (mm) <input type="number" id="radial_diameter_mm" step="0.1"></label>
<label>Sheath-to-Artery Ratio <input type="number" id="sheath_ratio" step="0.05"></label>
</fieldset>
<fieldset>
<legend>Categorical Variables</legend>
<label>Heparin Category
<select id="heparin_category"><option value="1">≤5000 IU</option><option value="2">≥5000 IU</option></select></label>
<label>Puncture Attempts
<select id="puncture_attempts"><option value="1">Single</option><option value="2">Multiple</option></select></label>
<label>History of Prior Radial Artery Catheterization
<select id="prior_catheterization"><option value="0">No</option><option value="1">Yes</option></select></label>
</fieldset>
<button onclick="predict()">🚀 Calculate RAO Risk</button>
<button onclick="reset()">🔄 Reset</button>
<div id="result"></div>
<p><small>This tool uses machine learning for prediction. Results are for reference only and should not replace clinical judgment.</small></p>
<script>
const numeric = ["compression_time","nitroglycerin_dose","radial_diameter_mm","sheath_ratio"];
const categorical = ["heparin_category","puncture_attempts","prior_catheterization"];
async function reset() {
  const d = await (await fetch("/api/defaults")).json();
  for (const id of numeric) document.getElementById(id).value = d[id];
  for (const id of categorical) document.getElementById(id).value = d[id];
  document.getElementById("result").textContent = "";
}
async function predict() {
  const body = {};
  for (const id of numeric) {
    const v = document.getElementById(id).value;
    if (v !== "") body[id] = parseFloat(v);
  }
  for (const id of categorical) body[id] = document.getElementById(id).value;
  const resp = await fetch("/api/predict", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify(body)
  });
  const payload = await resp.json();
  document.getElementById("result").textContent = payload.result;
}
reset();
</script>
</body>
</html>
`
